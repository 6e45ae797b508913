package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/five82/logview/internal/logging"
	"github.com/five82/logview/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	// Verify that backoff never exceeds maxBackoff regardless of input
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type fakeWatcher struct {
	added   []string
	removed []string
}

func (w *fakeWatcher) Add(path string) error {
	w.added = append(w.added, path)
	return nil
}

func (w *fakeWatcher) Remove(path string) {
	w.removed = append(w.removed, path)
}

func writeLog(t *testing.T, path, content string, flag int) {
	t.Helper()
	f, err := os.OpenFile(path, flag|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func content(t *testing.T, store *state.Store, path string) state.File {
	t.Helper()
	f, ok := store.Snapshot().File(path)
	if !ok {
		t.Fatalf("%s not open", path)
	}
	return f
}

func TestFollowerReadsAndFollows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	writeLog(t, path, "one\ntwo\nthree\n", os.O_TRUNC)

	store := state.NewStore(0)
	w := &fakeWatcher{}
	f := NewFollower(store, w, logging.Discard(), time.Second, 2)

	if !f.Follow(path, "utf-8") {
		t.Fatalf("Follow returned false for a new file")
	}
	if f.Follow(path, "utf-8") {
		t.Fatalf("Follow returned true for an open file")
	}
	if len(w.added) != 1 || w.added[0] != path {
		t.Fatalf("watched = %v, want [%s]", w.added, path)
	}

	f.refresh()
	got := content(t, store, path)
	if got.Content != "two\nthree\n" || !got.Loaded {
		t.Fatalf("after load Content = %q Loaded = %v", got.Content, got.Loaded)
	}
	gen := got.Generation

	writeLog(t, path, "four\n", os.O_APPEND)
	f.refresh()
	got = content(t, store, path)
	if got.Content != "two\nthree\nfour\n" {
		t.Fatalf("after append Content = %q", got.Content)
	}
	if got.Generation != gen {
		t.Fatalf("append changed generation %d -> %d", gen, got.Generation)
	}

	writeLog(t, path, "new\n", os.O_TRUNC)
	f.refresh()
	got = content(t, store, path)
	if got.Content != "new\n" || got.Generation == gen {
		t.Fatalf("after truncation Content = %q Generation = %d", got.Content, got.Generation)
	}

	f.Unfollow(path)
	if _, ok := store.Snapshot().File(path); ok {
		t.Fatalf("file still open after Unfollow")
	}
	if len(w.removed) != 1 {
		t.Fatalf("removed = %v, want one path", w.removed)
	}
}

func TestFollowerSetEncodingRereads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latin.log")
	writeLog(t, path, "caf\xe9\n", os.O_TRUNC)

	store := state.NewStore(0)
	f := NewFollower(store, nil, logging.Discard(), time.Second, 0)
	f.Follow(path, "utf-8")
	f.refresh()
	if got := content(t, store, path).Content; got != "caf�\n" {
		t.Fatalf("utf-8 Content = %q", got)
	}

	if !f.SetEncoding(path, "latin1") {
		t.Fatalf("SetEncoding returned false")
	}
	f.refresh()
	if got := content(t, store, path).Content; got != "café\n" {
		t.Fatalf("latin1 Content = %q", got)
	}
}

func TestFollowerBacksOffAfterFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	store := state.NewStore(0)
	f := NewFollower(store, nil, logging.Discard(), time.Second, 0)
	now := time.Now()
	f.now = func() time.Time { return now }

	f.Follow(path, "no-such-encoding")
	f.refresh()
	if got := content(t, store, path); got.ConsecutiveFailures != 1 || got.LastError == nil {
		t.Fatalf("after first read failures = %d err = %v", got.ConsecutiveFailures, got.LastError)
	}

	f.refresh()
	if got := content(t, store, path).ConsecutiveFailures; got != 1 {
		t.Fatalf("read during backoff, failures = %d", got)
	}

	now = now.Add(maxBackoff)
	f.refresh()
	if got := content(t, store, path).ConsecutiveFailures; got != 2 {
		t.Fatalf("after backoff failures = %d, want 2", got)
	}
}

func TestFollowerMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "later.log")
	store := state.NewStore(0)
	f := NewFollower(store, nil, logging.Discard(), time.Second, 10)
	f.Follow(path, "")
	f.refresh()

	got := content(t, store, path)
	if !got.Loaded || got.Content != "" || got.LastError != nil {
		t.Fatalf("missing file = %+v", got)
	}

	writeLog(t, path, "hello\n", os.O_TRUNC)
	f.refresh()
	if got := content(t, store, path).Content; got != "hello\n" {
		t.Fatalf("created file Content = %q", got)
	}
}
