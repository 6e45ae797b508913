package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/logview/internal/logtail"
	"github.com/five82/logview/internal/state"
)

const (
	defaultPollInterval = time.Second
	maxBackoff          = 30 * time.Second
)

// calculateBackoff returns how long to wait before reading a file again
// after the given number of consecutive failures.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for range failures {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}

// fileWatcher is the part of watcher.Watcher the follower uses.
type fileWatcher interface {
	Add(path string) error
	Remove(path string)
}

// Follower keeps the store in step with the files it holds. It reads on a
// ticker and whenever it is woken, either by the UI after opening a file or
// by the file watcher.
type Follower struct {
	store     *state.Store
	watcher   fileWatcher
	logger    *slog.Logger
	interval  time.Duration
	tailLines int
	wake      chan struct{}
	now       func() time.Time
}

// NewFollower creates a follower for store. watcher may be nil, in which
// case changes are only picked up by polling.
func NewFollower(store *state.Store, watcher fileWatcher, logger *slog.Logger, interval time.Duration, tailLines int) *Follower {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Follower{
		store:     store,
		watcher:   watcher,
		logger:    logger,
		interval:  interval,
		tailLines: tailLines,
		wake:      make(chan struct{}, 1),
		now:       time.Now,
	}
}

// Follow opens path in the store and schedules its first read. It reports
// false when the file was already open.
func (f *Follower) Follow(path, encoding string) bool {
	if !f.store.Open(path, encoding) {
		return false
	}
	if f.watcher != nil {
		if err := f.watcher.Add(path); err != nil {
			f.logger.Warn("watch failed, polling only", "path", path, "error", err)
		}
	}
	f.Wake()
	return true
}

// Unfollow closes path.
func (f *Follower) Unfollow(path string) {
	if f.watcher != nil {
		f.watcher.Remove(path)
	}
	f.store.Close(path)
}

// SetEncoding switches the encoding of path and rereads it.
func (f *Follower) SetEncoding(path, encoding string) bool {
	if !f.store.SetEncoding(path, encoding) {
		return false
	}
	f.Wake()
	return true
}

// Wake requests a read without waiting for the next tick.
func (f *Follower) Wake() {
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// Run reads until ctx is cancelled. changes delivers watcher notifications
// and may be nil.
func (f *Follower) Run(ctx context.Context, changes <-chan struct{}) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		f.refresh()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-f.wake:
		case <-changes:
		}
	}
}

func (f *Follower) refresh() {
	now := f.now()
	for _, t := range f.store.Targets() {
		if t.Failures > 0 && now.Sub(t.LastAttempt) < calculateBackoff(t.Failures, f.interval) {
			continue
		}
		f.read(t)
	}
}

// read brings one file up to date. Results for a target that went stale
// while reading are discarded by the store.
func (f *Follower) read(t state.Target) {
	enc, _, err := logtail.LookupEncoding(t.Encoding)
	if err != nil {
		f.store.Fail(t, err)
		f.logger.Warn("read failed", "path", t.Path, "error", err)
		return
	}

	if !t.Loaded {
		chunk, err := logtail.Tail(t.Path, f.tailLines, enc)
		if err != nil {
			f.store.Fail(t, err)
			f.logger.Warn("read failed", "path", t.Path, "error", err)
			return
		}
		if f.store.Reset(t, chunk.Text, chunk.Next) {
			f.logger.Debug("loaded", "path", t.Path, "bytes", chunk.Next)
		}
		return
	}

	chunk, err := logtail.Follow(t.Path, t.Offset, f.tailLines, enc)
	if err != nil {
		f.store.Fail(t, err)
		f.logger.Warn("read failed", "path", t.Path, "error", err)
		return
	}
	switch {
	case chunk.Reset:
		if f.store.Reset(t, chunk.Text, chunk.Next) {
			f.logger.Info("file truncated, reloaded", "path", t.Path)
		}
	case chunk.Text != "" || chunk.Next != t.Offset:
		f.store.Append(t, chunk.Text, chunk.Next)
	}
}
