// Package session implements C5: a named, ordered list of windows with a
// designated root at index 0 that defines the session's liveness.
package session

import (
	"sync"

	"tenexmux/internal/mux/muxerr"
	"tenexmux/internal/mux/window"
)

// Session is a named ordered list of windows (§3 Session).
type Session struct {
	Name    string
	Created int64

	// root is the window spawned at creation. Its child defines liveness,
	// including after KillWindow(0) has removed it from windows.
	root *window.Window

	mu      sync.Mutex
	windows []*window.Window
}

// New creates a session with a root window at index 0.
func New(name, workingDir string, command []string, rows, cols int, created int64) (*Session, error) {
	root, err := window.Spawn(0, name, workingDir, command, rows, cols)
	if err != nil {
		return nil, err
	}
	return &Session{
		Name:    name,
		Created: created,
		root:    root,
		windows: []*window.Window{root},
	}, nil
}

// Alive reports whether the root window's child has not yet been observed
// to exit (§3 Liveness rule).
func (s *Session) Alive() bool {
	return s.root.Alive()
}

// CreateWindow appends a new window at the next index (§4.5).
func (s *Session) CreateWindow(name, workingDir string, command []string, rows, cols int) (int, error) {
	s.mu.Lock()
	index := len(s.windows)
	s.mu.Unlock()

	w, err := window.Spawn(index, name, workingDir, command, rows, cols)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-derive the index under lock in case of a concurrent CreateWindow;
	// spawning happens outside the lock so a slow PTY open on one caller
	// doesn't block others, but the append position is authoritative here.
	index = len(s.windows)
	w.Index = index
	s.windows = append(s.windows, w)
	return index, nil
}

// KillWindow removes the window at i, signals its child, and renumbers the
// remaining windows contiguously (§4.5, §8 invariants). i == 0 is
// permitted and leaves the session dead; the registry's next sweep removes
// it (§4.6 list()).
func (s *Session) KillWindow(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.windows) {
		s.mu.Unlock()
		return muxerr.Newf(muxerr.NotFound, "window %d not found", i)
	}
	w := s.windows[i]
	s.windows = append(s.windows[:i], s.windows[i+1:]...)
	s.renumberLocked()
	s.mu.Unlock()

	return w.Kill()
}

// renumberLocked must be called with mu held. It re-walks windows setting
// each Index to its current list position, maintaining the invariant
// S.windows[i].index == i unconditionally after any structural change.
func (s *Session) renumberLocked() {
	for i, w := range s.windows {
		w.Index = i
	}
}

// Window returns the window at index i, or NotFound.
func (s *Session) Window(i int) (*window.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.windows) {
		return nil, muxerr.Newf(muxerr.NotFound, "window %d not found", i)
	}
	return s.windows[i], nil
}

// Rename updates the session's name and, in lock-step, the root window's
// name (§4.5).
func (s *Session) Rename(newName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Name = newName
	if len(s.windows) > 0 {
		s.windows[0].Name = newName
	}
}

// RenameWindow updates the name of the window at index i under s.mu,
// matching how Rename updates the root window's name (§5 per-object mutex
// discipline).
func (s *Session) RenameWindow(i int, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.windows) {
		return muxerr.Newf(muxerr.NotFound, "window %d not found", i)
	}
	s.windows[i].Name = newName
	return nil
}

// WindowInfo is the list-facing snapshot of one window.
type WindowInfo struct {
	Index      int
	Name       string
	WorkingDir string
}

// ListWindows snapshots the current window list.
func (s *Session) ListWindows() []WindowInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]WindowInfo, len(s.windows))
	for i, w := range s.windows {
		out[i] = WindowInfo{Index: w.Index, Name: w.Name, WorkingDir: w.WorkingDir}
	}
	return out
}

// ListPanePids returns the concrete OS process IDs of each window's child,
// excluding zeros (§4.5).
func (s *Session) ListPanePids() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pids []int
	for _, w := range s.windows {
		if pid := w.PID(); pid != 0 {
			pids = append(pids, pid)
		}
	}
	return pids
}

// WindowCount reports the current number of windows.
func (s *Session) WindowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// KillAll terminates every window's child in reverse order (§4.6 kill()),
// which avoids index-shift races should any listener observe intermediate
// states while the session is being torn down.
func (s *Session) KillAll() {
	s.mu.Lock()
	windows := append([]*window.Window(nil), s.windows...)
	s.mu.Unlock()

	for i := len(windows) - 1; i >= 0; i-- {
		windows[i].Kill()
	}
}
