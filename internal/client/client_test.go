package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada-remote/internal/devserver"
	"github.com/Makepad-fr/tada-remote/internal/model"
)

func newBackend(t *testing.T, seed ...model.Todo) *Client {
	t.Helper()
	srv := httptest.NewServer(devserver.New(devserver.NewMemoryStore(seed...), nil).Router())
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestNewDefaultsBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New("").BaseURL())
	assert.Equal(t, "http://example.test", New("http://example.test/").BaseURL())
}

func TestCreateThenListContainsOnce(t *testing.T) {
	ctx := context.Background()
	c := newBackend(t, model.Todo{ID: 1, Title: "買い物"})

	created, err := c.Create(ctx, "洗濯")
	require.NoError(t, err)
	assert.Equal(t, model.Todo{ID: 2, Title: "洗濯", Completed: false}, created)

	todos, err := c.List(ctx)
	require.NoError(t, err)
	count := 0
	for _, td := range todos {
		if td.ID == created.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, []int{1, 2}, ids(todos))
}

func TestDuplicateTitlesAllowed(t *testing.T) {
	ctx := context.Background()
	c := newBackend(t)

	a, err := c.Create(ctx, "同じ")
	require.NoError(t, err)
	b, err := c.Create(ctx, "同じ")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCompleteFlipsOnlyTarget(t *testing.T) {
	ctx := context.Background()
	c := newBackend(t,
		model.Todo{ID: 1, Title: "買い物"},
		model.Todo{ID: 2, Title: "洗濯", Completed: true},
	)

	before, err := c.List(ctx)
	require.NoError(t, err)

	got, err := c.Complete(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	after, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, !before[0].Completed, after[0].Completed)
	assert.Equal(t, before[1], after[1])
}

func TestDeleteRemovesID(t *testing.T) {
	ctx := context.Background()
	c := newBackend(t, model.Todo{ID: 1, Title: "買い物"}, model.Todo{ID: 2, Title: "洗濯"})

	raw, err := c.Delete(ctx, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	todos, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids(todos))
}

func TestListEmptyIsNotNil(t *testing.T) {
	todos, err := newBackend(t).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)
}

func TestRequestShape(t *testing.T) {
	type seen struct{ method, path, contentType, reqID string }
	var (
		mu  sync.Mutex
		got []seen
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = append(got, seen{r.Method, r.URL.Path, r.Header.Get("Content-Type"), r.Header.Get(RequestIDHeader)})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`[]`))
		default:
			w.Write([]byte(`{"id":7,"title":"x","completed":false}`))
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := New(srv.URL)
	_, _ = c.List(ctx)
	_, _ = c.Create(ctx, "x")
	_, _ = c.Complete(ctx, 7)
	_, _ = c.Delete(ctx, 7)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 4)
	assert.Equal(t, "GET /todos/", got[0].method+" "+got[0].path)
	assert.Equal(t, "POST /todos/", got[1].method+" "+got[1].path)
	assert.Equal(t, "application/json", got[1].contentType)
	assert.Equal(t, "PATCH /todos/7/complete", got[2].method+" "+got[2].path)
	assert.Empty(t, got[2].contentType)
	assert.Equal(t, "DELETE /todos/7", got[3].method+" "+got[3].path)
	for _, s := range got {
		assert.NotEmpty(t, s.reqID)
	}
}

func TestServerErrorIsRequestFailed(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"boom"}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	c := New(srv.URL)

	tests := []struct {
		name string
		op   Op
		call func() error
		msg  string
	}{
		{"list", OpList, func() error { _, err := c.List(ctx); return err }, "Todoの取得に失敗しました"},
		{"create", OpCreate, func() error { _, err := c.Create(ctx, "x"); return err }, "Todoの作成に失敗しました"},
		{"complete", OpUpdate, func() error { _, err := c.Complete(ctx, 1); return err }, "Todoの更新に失敗しました"},
		{"delete", OpDelete, func() error { _, err := c.Delete(ctx, 1); return err }, "Todoの削除に失敗しました"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRequestFailed))

			var rf *RequestFailedError
			require.True(t, errors.As(err, &rf))
			assert.Equal(t, tt.op, rf.Op)
			assert.Equal(t, http.StatusInternalServerError, rf.StatusCode)
			assert.Equal(t, tt.msg, rf.Message())
			assert.Contains(t, err.Error(), "boom")
		})
	}
	// no retries
	assert.Equal(t, int32(4), calls.Load())
}

func TestNotFoundFromBackend(t *testing.T) {
	_, err := newBackend(t).Complete(context.Background(), 99)
	var rf *RequestFailedError
	require.True(t, errors.As(err, &rf))
	assert.Equal(t, http.StatusNotFound, rf.StatusCode)
	assert.Contains(t, err.Error(), "指定されたTodoが見つかりません")
}

func TestNetworkErrorIsRequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).List(context.Background())
	require.ErrorIs(t, err, ErrRequestFailed)
	var rf *RequestFailedError
	require.ErrorAs(t, err, &rf)
	assert.Zero(t, rf.StatusCode)
}

func TestCancelledContext(t *testing.T) {
	c := newBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.List(ctx)
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).List(context.Background())
	require.ErrorIs(t, err, ErrRequestFailed)
}

func ids(todos []model.Todo) []int {
	out := make([]int, 0, len(todos))
	for _, t := range todos {
		out = append(out, t.ID)
	}
	return out
}
