package session

import (
	"testing"

	"tenexmux/internal/mux/muxerr"
)

func sleepCommand() []string {
	return []string{"sh", "-c", "sleep 30"}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := New("s1", "", sleepCommand(), 24, 80, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.KillAll)
	return s
}

func TestNewSessionHasRootWindowAtIndexZero(t *testing.T) {
	s := newTestSession(t)
	if s.WindowCount() != 1 {
		t.Fatalf("WindowCount() = %d, want 1", s.WindowCount())
	}
	w, err := s.Window(0)
	if err != nil {
		t.Fatalf("Window(0): %v", err)
	}
	if w.Index != 0 {
		t.Fatalf("root window index = %d, want 0", w.Index)
	}
}

// KillWindow renumbers survivors so that for every remaining window j,
// S.windows[j].index == j, and the count decreases by exactly 1 (§8).
func TestKillWindowRenumbersInvariant(t *testing.T) {
	s := newTestSession(t)

	for i := 0; i < 3; i++ {
		if _, err := s.CreateWindow("", "", sleepCommand(), 24, 80); err != nil {
			t.Fatalf("CreateWindow %d: %v", i, err)
		}
	}
	if got := s.WindowCount(); got != 4 {
		t.Fatalf("WindowCount() = %d, want 4", got)
	}

	if err := s.KillWindow(1); err != nil {
		t.Fatalf("KillWindow(1): %v", err)
	}

	if got := s.WindowCount(); got != 3 {
		t.Fatalf("WindowCount() = %d, want 3", got)
	}
	for _, info := range s.ListWindows() {
		w, err := s.Window(info.Index)
		if err != nil {
			t.Fatalf("Window(%d): %v", info.Index, err)
		}
		if w.Index != info.Index {
			t.Fatalf("window at position %d has Index %d", info.Index, w.Index)
		}
	}
}

func TestCreateWindowAssignsSequentialIndices(t *testing.T) {
	s := newTestSession(t)
	for want := 1; want <= 3; want++ {
		got, err := s.CreateWindow("", "", sleepCommand(), 24, 80)
		if err != nil {
			t.Fatalf("CreateWindow: %v", err)
		}
		if got != want {
			t.Fatalf("CreateWindow returned index %d, want %d", got, want)
		}
	}
}

func TestRenameUpdatesSessionAndRootWindow(t *testing.T) {
	s := newTestSession(t)
	s.Rename("s2")
	if s.Name != "s2" {
		t.Fatalf("Name = %q, want s2", s.Name)
	}
	root, err := s.Window(0)
	if err != nil {
		t.Fatalf("Window(0): %v", err)
	}
	if root.Name != "s2" {
		t.Fatalf("root window Name = %q, want s2", root.Name)
	}
}

func TestKillWindowOutOfRangeIsNotFound(t *testing.T) {
	s := newTestSession(t)
	if err := s.KillWindow(5); muxerr.KindOf(err) != muxerr.NotFound {
		t.Fatalf("KillWindow(5) err = %v, want NotFound", err)
	}
}

func TestListPanePidsExcludesZero(t *testing.T) {
	s := newTestSession(t)
	pids := s.ListPanePids()
	if len(pids) != 1 || pids[0] == 0 {
		t.Fatalf("ListPanePids() = %v, want one nonzero pid", pids)
	}
}
