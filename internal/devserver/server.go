// Package devserver is a small stand-in for the tutorial's FastAPI backend.
// It serves the same /todos surface from memory or a sqlite file.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	detailNotFound = "指定されたTodoが見つかりません"
	detailInvalid  = "タイトルを入力してください"
	messageDeleted = "Todoを削除しました"
)

// create bodies must carry a title with at least one non-space character
var createSchema = jsonschema.MustCompileString("todo_create.json", `{
	"type": "object",
	"required": ["title"],
	"properties": {
		"title": {"type": "string", "minLength": 1, "pattern": "\\S"}
	}
}`)

// Server wires a Store to HTTP handlers.
type Server struct {
	store  Store
	logger *log.Logger
}

func New(store Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{store: store, logger: logger}
}

// Router returns the handler for the /todos surface plus /health.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	for _, p := range []string{"/todos", "/todos/"} {
		r.HandleFunc(p, s.listTodos).Methods(http.MethodGet)
		r.HandleFunc(p, s.createTodo).Methods(http.MethodPost)
	}
	r.HandleFunc("/todos/{id:[0-9]+}/complete", s.completeTodo).Methods(http.MethodPatch)
	r.HandleFunc("/todos/{id:[0-9]+}", s.deleteTodo).Methods(http.MethodDelete)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dev backend listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) listTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := s.store.List(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

func (s *Server) createTodo(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, detailInvalid)
		return
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		writeDetail(w, http.StatusBadRequest, detailInvalid)
		return
	}
	if err := createSchema.Validate(raw); err != nil {
		s.logger.Debug("invalid create body", "err", err)
		writeDetail(w, http.StatusBadRequest, detailInvalid)
		return
	}
	var body struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		writeDetail(w, http.StatusBadRequest, detailInvalid)
		return
	}

	todo, err := s.store.Create(r.Context(), body.Title)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *Server) completeTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	todo, err := s.store.Complete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *Server) deleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := s.store.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": messageDeleted})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("store failure", "path", r.URL.Path, "request_id", r.Header.Get("X-Request-ID"), "err", err)
	writeDetail(w, http.StatusInternalServerError, "internal server error")
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return 0, false
	}
	return id, true
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-ID") == "" {
			r.Header.Set("X-Request-ID", uuid.NewString())
		}
		w.Header().Set("X-Request-ID", r.Header.Get("X-Request-ID"))

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"took", time.Since(start).Round(time.Microsecond),
			"request_id", r.Header.Get("X-Request-ID"),
		)
	})
}
