package client

import (
	"errors"
	"fmt"
)

// Op names the client operation a failure belongs to.
type Op string

const (
	OpList   Op = "list"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// ErrRequestFailed matches every *RequestFailedError via errors.Is.
var ErrRequestFailed = errors.New("request failed")

var opMessages = map[Op]string{
	OpList:   "Todoの取得に失敗しました",
	OpCreate: "Todoの作成に失敗しました",
	OpUpdate: "Todoの更新に失敗しました",
	OpDelete: "Todoの削除に失敗しました",
}

// RequestFailedError is returned when a call does not reach a successful
// HTTP status. StatusCode is 0 when the request never got a response.
type RequestFailedError struct {
	Op         Op
	StatusCode int
	RequestID  string
	Err        error
}

// Message is the human-readable, per-operation description.
func (e *RequestFailedError) Message() string {
	if msg, ok := opMessages[e.Op]; ok {
		return msg
	}
	return string(e.Op) + " failed"
}

func (e *RequestFailedError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s (status %d): %v", e.Message(), e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s (status %d)", e.Message(), e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message(), e.Err)
	}
	return e.Message()
}

func (e *RequestFailedError) Unwrap() error { return e.Err }

func (e *RequestFailedError) Is(target error) bool { return target == ErrRequestFailed }
