package jsonstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope.json"))
	v, ok, err := s.Get("checkbox-a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestSetGetRoundTripAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)

	require.NoError(t, New(path).Set("checkbox-a", []byte("true")))
	require.NoError(t, New(path).Set("checkbox-b", []byte("false")))

	s := New(path)
	v, ok, err := s.Get("checkbox-a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "true", string(v))

	v, ok, err = s.Get("checkbox-b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "false", string(v))
}

func TestSetRejectsInvalidJSON(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "kv.json"))
	assert.Error(t, s.Set("k", []byte("{")))
}

func TestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, _, err := New(path).Get("k")
	assert.Error(t, err)
	assert.Error(t, New(path).Set("k", []byte("true")))
}

func TestEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, ok, err := New(path).Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetReplacesFileAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	s := New(path)
	require.NoError(t, s.Set("checkbox-a", []byte("true")))

	// a stray temp from an interrupted write does not affect reads
	require.NoError(t, os.WriteFile(filepath.Join(dir, "."+DefaultFileName+".123.tmp"), []byte("{"), 0o644))
	require.NoError(t, s.Set("checkbox-b", []byte("false")))

	v, ok, err := New(path).Get("checkbox-a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "true", string(v))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{DefaultFileName, "." + DefaultFileName + ".123.tmp"}, names, "no temp left behind by Set")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
