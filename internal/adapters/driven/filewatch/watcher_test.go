package filewatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	w, err := New("wiki_embeddings.idx", 0)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(w.Path()))
	assert.Equal(t, DefaultDebounce, w.debounce)
}

func TestWatcher_HandleEvent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "wiki.idx")
	w, err := New(target, time.Millisecond)
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want *Change
	}{
		{"create", target, fsnotify.Create, &Change{Path: target, Type: ChangeWritten}},
		{"write", target, fsnotify.Write, &Change{Path: target, Type: ChangeWritten}},
		{"remove", target, fsnotify.Remove, &Change{Path: target, Type: ChangeRemoved}},
		{"rename away", target, fsnotify.Rename, &Change{Path: target, Type: ChangeRemoved}},
		{"chmod ignored", target, fsnotify.Chmod, nil},
		{"other file ignored", filepath.Join(dir, "other.idx"), fsnotify.Write, nil},
		{"temp file ignored", target + ".tmp-123", fsnotify.Create, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.handleEvent(fsnotify.Event{Name: tt.path, Op: tt.op})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWatcher_Watch_ReportsReplacement(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "wiki.idx")

	w, err := New(target, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes, err := w.Watch(ctx)
	require.NoError(t, err)

	// Write a temp file then rename it over the target, as index saves do
	tmp := filepath.Join(dir, "wiki.idx.tmp-1")
	require.NoError(t, os.WriteFile(tmp, []byte("index"), 0o600))
	require.NoError(t, os.Rename(tmp, target))

	select {
	case c := <-changes:
		assert.Equal(t, target, c.Path)
		assert.Equal(t, ChangeWritten, c.Type)
	case <-ctx.Done():
		t.Fatal("no change reported")
	}
}

func TestWatcher_Watch_ClosesOnCancel(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "wiki.idx"), time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := w.Watch(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
}

func TestWatcher_Watch_MissingDirectory(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing", "wiki.idx"), 0)
	require.NoError(t, err)

	_, err = w.Watch(context.Background())
	assert.Error(t, err)
}
