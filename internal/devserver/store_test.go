package devserver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada-remote/internal/model"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "todo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sq,
	}
}

func TestStoreLifecycle(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			todos, err := s.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, todos)

			a, err := s.Create(ctx, "買い物")
			require.NoError(t, err)
			b, err := s.Create(ctx, "洗濯")
			require.NoError(t, err)
			assert.Equal(t, model.Todo{ID: 1, Title: "買い物"}, a)
			assert.Equal(t, 2, b.ID)

			got, err := s.Complete(ctx, a.ID)
			require.NoError(t, err)
			assert.True(t, got.Completed)
			got, err = s.Complete(ctx, a.ID)
			require.NoError(t, err)
			assert.False(t, got.Completed, "complete flips back")

			require.NoError(t, s.Delete(ctx, a.ID))
			todos, err = s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []model.Todo{b}, todos)

			_, err = s.Complete(ctx, a.ID)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.Delete(ctx, a.ID), ErrNotFound)

			// ids are not reused after a delete
			c, err := s.Create(ctx, "掃除")
			require.NoError(t, err)
			assert.Equal(t, 3, c.ID)
		})
	}
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "todo.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	_, err = s.Create(ctx, "宿題をする")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	todos, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "宿題をする", todos[0].Title)
}

func TestMemoryStoreSeedSetsNextID(t *testing.T) {
	s := NewMemoryStore(model.Todo{ID: 5, Title: "x"})
	got, err := s.Create(context.Background(), "y")
	require.NoError(t, err)
	assert.Equal(t, 6, got.ID)
}
