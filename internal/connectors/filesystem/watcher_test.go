package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsnotify/fsnotify"
)

func TestWatcher_FiresOnceForBurstOfWrites(t *testing.T) {
	dir := t.TempDir()

	var fired atomic.Int32
	watcher, err := NewWatcher(func() { fired.Add(1) }, WithDebounce(100*time.Millisecond))
	require.NoError(t, err)
	defer watcher.Close()
	require.NoError(t, watcher.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = watcher.Run(ctx)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.org"), []byte("* H\nbody"), 0600))
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		return fired.Load() == 1
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	<-done
}

func TestWatcher_IgnoresNonOrgFiles(t *testing.T) {
	dir := t.TempDir()

	var fired atomic.Int32
	watcher, err := NewWatcher(func() { fired.Add(1) }, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	defer watcher.Close()
	require.NoError(t, watcher.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = watcher.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("plain"), 0600))

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	watcher, err := NewWatcher(func() {})
	require.NoError(t, err)
	defer watcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = watcher.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"org write", fsnotify.Event{Name: "/n/a.org", Op: fsnotify.Write}, true},
		{"org create", fsnotify.Event{Name: "/n/a.org", Op: fsnotify.Create}, true},
		{"org remove", fsnotify.Event{Name: "/n/a.org", Op: fsnotify.Remove}, true},
		{"org chmod only", fsnotify.Event{Name: "/n/a.org", Op: fsnotify.Chmod}, false},
		{"txt write", fsnotify.Event{Name: "/n/a.txt", Op: fsnotify.Write}, false},
		{"uppercase extension", fsnotify.Event{Name: "/n/a.ORG", Op: fsnotify.Write}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevant(tt.event))
		})
	}
}
