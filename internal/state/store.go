package state

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// File is the state of one open log file.
type File struct {
	Path     string
	Encoding string
	// Content is the decoded text currently held. It is a window onto
	// everything read since the last reset: Trimmed bytes were dropped from
	// its front to respect the buffer limit.
	Content string
	Trimmed int
	// Generation changes whenever Content is replaced rather than extended.
	Generation          int
	Offset              int64
	Loaded              bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// Target is what the follower needs to read a file. It identifies the
// generation it was taken from so stale reads can be discarded.
type Target struct {
	Path       string
	Encoding   string
	Offset     int64
	Generation int
	Loaded     bool

	// Failures counts consecutive failed reads, the last of which finished
	// at LastAttempt.
	Failures    int
	LastAttempt time.Time
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Files []File
}

// File returns the file with path, if open.
func (s Snapshot) File(path string) (File, bool) {
	i := slices.IndexFunc(s.Files, func(f File) bool { return f.Path == path })
	if i < 0 {
		return File{}, false
	}
	return s.Files[i], true
}

// Store coordinates the follower, which writes file content, with the UI,
// which opens and closes files and reads snapshots.
type Store struct {
	mu       sync.RWMutex
	files    []*File
	maxBytes int
}

// NewStore creates a store holding at most maxBytes of content per file.
// maxBytes <= 0 means unlimited.
func NewStore(maxBytes int) *Store {
	return &Store{maxBytes: maxBytes}
}

func (s *Store) find(path string) *File {
	for _, f := range s.files {
		if f.Path == path {
			return f
		}
	}
	return nil
}

// Open adds path with the given encoding. It reports false when the file is
// already open.
func (s *Store) Open(path, encoding string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(path) != nil {
		return false
	}
	s.files = append(s.files, &File{Path: path, Encoding: encoding})
	return true
}

// Close removes path and reports whether it was open.
func (s *Store) Close(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.files)
	s.files = slices.DeleteFunc(s.files, func(f *File) bool { return f.Path == path })
	return len(s.files) != n
}

// CloseAll removes every file and returns their paths.
func (s *Store) CloseAll() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, len(s.files))
	for i, f := range s.files {
		paths[i] = f.Path
	}
	s.files = nil
	return paths
}

// SetEncoding changes the encoding of path and discards its content so the
// follower reads it again.
func (s *Store) SetEncoding(path, encoding string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.find(path)
	if f == nil {
		return false
	}
	f.Encoding = encoding
	f.Content = ""
	f.Trimmed = 0
	f.Offset = 0
	f.Loaded = false
	f.LastError = nil
	f.ConsecutiveFailures = 0
	f.Generation++
	return true
}

// Targets lists the open files for the follower.
func (s *Store) Targets() []Target {
	s.mu.RLock()
	defer s.mu.RUnlock()

	targets := make([]Target, len(s.files))
	for i, f := range s.files {
		targets[i] = Target{
			Path:       f.Path,
			Encoding:   f.Encoding,
			Offset:     f.Offset,
			Generation: f.Generation,
			Loaded:     f.Loaded,

			Failures:    f.ConsecutiveFailures,
			LastAttempt: f.LastUpdated,
		}
	}
	return targets
}

// current returns the file t was taken from, or nil when the file was closed
// or reset since.
func (s *Store) current(t Target) *File {
	f := s.find(t.Path)
	if f == nil || f.Generation != t.Generation || f.Offset != t.Offset {
		return nil
	}
	return f
}

// Append extends the content read for t and records the next read offset.
// It reports false when t is stale.
func (s *Store) Append(t Target, text string, next int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.current(t)
	if f == nil {
		return false
	}
	f.Content += text
	f.Offset = next
	s.trim(f)
	s.succeeded(f)
	return true
}

// Reset replaces the content of t, e.g. after the initial read or when the
// file was truncated. It reports false when t is stale.
func (s *Store) Reset(t Target, text string, next int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.current(t)
	if f == nil {
		return false
	}
	f.Content = text
	f.Trimmed = 0
	f.Offset = next
	f.Loaded = true
	f.Generation++
	s.trim(f)
	s.succeeded(f)
	return true
}

// Fail records a read error for t. Previously read content is kept. It
// reports false when t is stale.
func (s *Store) Fail(t Target, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.current(t)
	if f == nil {
		return false
	}
	f.LastError = err
	f.LastUpdated = time.Now()
	f.ConsecutiveFailures++
	return true
}

func (s *Store) succeeded(f *File) {
	f.LastError = nil
	f.LastUpdated = time.Now()
	f.ConsecutiveFailures = 0
}

// trim drops whole lines from the front of f until it fits the limit.
func (s *Store) trim(f *File) {
	if s.maxBytes <= 0 || len(f.Content) <= s.maxBytes {
		return
	}
	cut := len(f.Content) - s.maxBytes
	if i := strings.IndexAny(f.Content[cut-1:], "\r\n"); i >= 0 {
		cut += i
		if f.Content[cut-1] == '\r' && cut < len(f.Content) && f.Content[cut] == '\n' {
			cut++
		}
	}
	f.Content = f.Content[cut:]
	f.Trimmed += cut
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Files: make([]File, len(s.files))}
	for i, f := range s.files {
		snap.Files[i] = *f
		if f.LastError != nil {
			snap.Files[i].LastError = fmt.Errorf("%w", f.LastError)
		}
	}
	return snap
}
