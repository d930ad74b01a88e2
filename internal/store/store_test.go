package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"ifc-api/internal/common/logger"
	"ifc-api/internal/engine"
	"ifc-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	return New(logger.NewTestLogger(t))
}

func sampleModel(t *testing.T) *engine.Model {
	t.Helper()
	e, err := engine.New(nil, logger.NewNoOpLogger())
	require.NoError(t, err)
	m, err := e.Open(context.Background(), []byte(testutil.SampleIFC))
	require.NoError(t, err)
	return m
}

func TestStore_CreateGet(t *testing.T) {
	s := createTestStore(t)
	model := sampleModel(t)
	path := testutil.WriteFile(t, "sample.ifc", testutil.SampleIFC)

	id := s.Create(model, "sample.ifc", path)
	assert.Len(t, id, 36, "uuid string form")

	entry, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, entry.ID)
	assert.Same(t, model, entry.Model)
	assert.Equal(t, "sample.ifc", entry.Filename)
	assert.Equal(t, path, entry.BackingPath)
	assert.Equal(t, int64(len(testutil.SampleIFC)), entry.Size)
	assert.False(t, entry.LoadedAt.IsZero())
	assert.Equal(t, 1, s.Len())
}

func TestStore_LogsSizeAndResidency(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := New(logger.NewZapAdapter(zap.New(core)))
	loaded := time.Date(2024, 5, 2, 10, 15, 0, 0, time.UTC)
	s.now = func() time.Time { return loaded }

	id := s.Create(sampleModel(t), "sample.ifc", "")
	s.now = func() time.Time { return loaded.Add(90 * time.Second) }
	require.NoError(t, s.Remove(id))

	entries := logs.FilterMessage("Model stored").All()
	require.Len(t, entries, 1)
	stored := entries[0].ContextMap()
	assert.EqualValues(t, len(testutil.SampleIFC), stored["bytes"])
	assert.Equal(t, "2024-05-02T10:15:00Z", stored["loadedAt"])

	entries = logs.FilterMessage("Model removed").All()
	require.Len(t, entries, 1)
	removed := entries[0].ContextMap()
	assert.Equal(t, id, removed["modelId"])
	assert.EqualValues(t, len(testutil.SampleIFC), removed["bytes"])
	assert.Equal(t, "1m30s", removed["resident"])
}

func TestStore_GetMissing(t *testing.T) {
	s := createTestStore(t)

	entry, err := s.Get("does-not-exist")
	assert.Nil(t, entry)
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestStore_DistinctIDs(t *testing.T) {
	s := createTestStore(t)
	model := sampleModel(t)

	a := s.Create(model, "same.ifc", "")
	b := s.Create(model, "same.ifc", "")
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.Remove(a))
	_, err := s.Get(b)
	assert.NoError(t, err)
}

func TestStore_CreateCollisionPanics(t *testing.T) {
	s := createTestStore(t)
	s.newID = func() string { return "fixed" }

	s.Create(nil, "a.ifc", "")
	assert.Panics(t, func() { s.Create(nil, "b.ifc", "") })
}

func TestStore_ListInsertionOrder(t *testing.T) {
	s := createTestStore(t)
	seq := 0
	s.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}

	assert.Empty(t, s.List())
	assert.NotNil(t, s.List())

	for _, name := range []string{"c.ifc", "a.ifc", "b.ifc"} {
		s.Create(nil, name, "")
	}
	require.NoError(t, s.Remove("id-2"))
	s.Create(nil, "d.ifc", "")

	assert.Equal(t, []Summary{
		{ModelID: "id-1", Filename: "c.ifc"},
		{ModelID: "id-3", Filename: "b.ifc"},
		{ModelID: "id-4", Filename: "d.ifc"},
	}, s.List())
}

func TestStore_Remove(t *testing.T) {
	tests := []struct {
		name       string
		removeFile func(string) error
		wantErr    bool
		wantKept   bool
	}{
		{name: "deletes file", removeFile: os.Remove},
		{
			name:       "file already gone",
			removeFile: func(string) error { return &fs.PathError{Op: "remove", Err: fs.ErrNotExist} },
		},
		{
			name:       "io failure keeps entry",
			removeFile: func(string) error { return &fs.PathError{Op: "remove", Err: fs.ErrPermission} },
			wantErr:    true,
			wantKept:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createTestStore(t)
			s.removeFile = tt.removeFile
			path := testutil.WriteFile(t, "model.ifc", testutil.SampleIFC)
			id := s.Create(nil, "model.ifc", path)

			err := s.Remove(id)
			_, getErr := s.Get(id)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, fs.ErrPermission)
				assert.NotErrorIs(t, err, ErrModelNotFound)
			} else {
				require.NoError(t, err)
			}
			if tt.wantKept {
				assert.NoError(t, getErr)
				assert.Equal(t, 1, s.Len())
			} else {
				assert.ErrorIs(t, getErr, ErrModelNotFound)
				assert.Equal(t, 0, s.Len())
			}
		})
	}
}

func TestStore_RemoveDeletesBackingFile(t *testing.T) {
	s := createTestStore(t)
	path := testutil.WriteFile(t, "model.ifc", testutil.SampleIFC)
	id := s.Create(nil, "model.ifc", path)

	require.NoError(t, s.Remove(id))
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	assert.ErrorIs(t, s.Remove(id), ErrModelNotFound)
}

func TestStore_Purge(t *testing.T) {
	s := createTestStore(t)
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 3; i++ {
		path, _, err := WriteScratch(dir, strings.NewReader(testutil.SampleIFC))
		require.NoError(t, err)
		paths = append(paths, path)
		s.Create(nil, fmt.Sprintf("m%d.ifc", i), path)
	}

	require.NoError(t, s.Purge())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.List())
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	}
}

func TestStore_PurgeReportsFailures(t *testing.T) {
	s := createTestStore(t)
	boom := errors.New("disk on fire")
	s.removeFile = func(string) error { return boom }
	s.Create(nil, "a.ifc", "/scratch/a.ifc")
	s.Create(nil, "b.ifc", "/scratch/b.ifc")

	err := s.Purge()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Len())
}

func TestStore_ConcurrentCreateRemove(t *testing.T) {
	s := createTestStore(t)
	keep := s.Create(nil, "keep.ifc", "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := s.Create(nil, fmt.Sprintf("m%d.ifc", i), "")
			_ = s.List()
			assert.NoError(t, s.Remove(id))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, []Summary{{ModelID: keep, Filename: "keep.ifc"}}, s.List())
}

// ==========================
// Scratch File Tests
// ==========================

func TestWriteScratch(t *testing.T) {
	dir := t.TempDir()

	path, n, err := WriteScratch(dir, bytes.NewReader([]byte(testutil.SampleIFC)))
	require.NoError(t, err)
	assert.Equal(t, int64(len(testutil.SampleIFC)), n)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "ifc-"))
	assert.Equal(t, ".ifc", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleIFC, string(data))

	require.NoError(t, RemoveScratch(path))
	require.NoError(t, RemoveScratch(path), "second removal is a no-op")
	require.NoError(t, RemoveScratch(""))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteScratch_Failures(t *testing.T) {
	dir := t.TempDir()

	_, _, err := WriteScratch(dir, failingReader{})
	require.Error(t, err)
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "partial scratch file must be removed")

	_, _, err = WriteScratch(filepath.Join(dir, "missing"), strings.NewReader("x"))
	assert.Error(t, err)
}
