package registry

import (
	"testing"

	"tenexmux/internal/mux/muxerr"
)

func sleepCommand() []string {
	return []string{"sh", "-c", "sleep 30"}
}

func TestCreateThenExists(t *testing.T) {
	r := New()
	if err := r.Create("s1", "", sleepCommand(), 24, 80, 1); err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer r.Kill("s1")
	if !r.Exists("s1") {
		t.Fatalf("expected s1 to exist")
	}
}

func TestCreateDuplicateNameFails(t *testing.T) {
	r := New()
	if err := r.Create("s1", "", sleepCommand(), 24, 80, 1); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	defer r.Kill("s1")
	err := r.Create("s1", "", sleepCommand(), 24, 80, 1)
	if muxerr.KindOf(err) != muxerr.Exists {
		t.Fatalf("second Create err = %v, want Exists", err)
	}
}

func TestKillThenExistsFalse(t *testing.T) {
	r := New()
	if err := r.Create("s1", "", sleepCommand(), 24, 80, 1); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := r.Kill("s1"); err != nil {
		t.Fatalf("Kill: %v", err)
	}
	if r.Exists("s1") {
		t.Fatalf("expected s1 to no longer exist")
	}
}

func TestRenameMovesEntry(t *testing.T) {
	r := New()
	if err := r.Create("old", "", sleepCommand(), 24, 80, 1); err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer r.Kill("new")
	if err := r.Rename("old", "new"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if r.Exists("old") {
		t.Fatalf("old name should no longer exist")
	}
	if !r.Exists("new") {
		t.Fatalf("new name should exist")
	}
}

func TestRenameToExistingNameFails(t *testing.T) {
	r := New()
	r.Create("a", "", sleepCommand(), 24, 80, 1)
	r.Create("b", "", sleepCommand(), 24, 80, 1)
	defer r.Kill("a")
	defer r.Kill("b")
	if err := r.Rename("a", "b"); muxerr.KindOf(err) != muxerr.Exists {
		t.Fatalf("Rename err = %v, want Exists", err)
	}
}

func TestListIncludesLiveSession(t *testing.T) {
	r := New()
	r.Create("s1", "", sleepCommand(), 24, 80, 1)
	defer r.Kill("s1")

	found := false
	for _, info := range r.List() {
		if info.Name == "s1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected s1 in List() output")
	}
}

func TestGetNotFound(t *testing.T) {
	r := New()
	_, err := r.Get("missing")
	if muxerr.KindOf(err) != muxerr.NotFound {
		t.Fatalf("Get err = %v, want NotFound", err)
	}
}
