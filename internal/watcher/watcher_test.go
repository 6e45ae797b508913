package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/five82/logview/internal/watcher"
)

func startWatcher(t *testing.T, paths ...string) (*watcher.Watcher, <-chan struct{}) {
	t.Helper()
	w, err := watcher.New(watcher.Config{DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	for _, p := range paths {
		require.NoError(t, w.Add(p))
	}
	return w, w.Start()
}

func expectSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}
}

func expectSilence(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
		t.Fatal("unexpected notification")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(logPath, []byte("start\n"), 0o644))

	_, onChange := startWatcher(t, logPath)

	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(logPath, []byte(fmt.Sprintf("line %d\n", i)), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	expectSignal(t, onChange)
	expectSilence(t, onChange)
}

func TestWatcher_IgnoresUnfollowedFiles(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	otherPath := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(logPath, []byte("x\n"), 0o644))
	require.NoError(t, os.WriteFile(otherPath, []byte("initial"), 0o644))

	_, onChange := startWatcher(t, logPath)

	require.NoError(t, os.WriteFile(otherPath, []byte("other content"), 0o644))
	expectSilence(t, onChange)
}

func TestWatcher_NoticesFileCreatedLater(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "later.log")

	_, onChange := startWatcher(t, logPath)

	require.NoError(t, os.WriteFile(logPath, []byte("hello\n"), 0o644))
	expectSignal(t, onChange)
}

func TestWatcher_RemoveStopsNotifications(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.log")
	b := filepath.Join(dir, "b.log")
	require.NoError(t, os.WriteFile(a, []byte("a\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("b\n"), 0o644))

	w, onChange := startWatcher(t, a, b)
	w.Remove(a)

	require.NoError(t, os.WriteFile(a, []byte("more a\n"), 0o644))
	expectSilence(t, onChange)

	require.NoError(t, os.WriteFile(b, []byte("more b\n"), 0o644))
	expectSignal(t, onChange)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig())
	require.NoError(t, err)
	w.Start()
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
