package endpoint

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetOverrideWinsAndDisplayMatches(t *testing.T) {
	defer SetOverride("")
	dir := t.TempDir()
	want := filepath.Join(dir, "custom.sock")

	SetOverride(want)
	ep, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ep.Display != want {
		t.Fatalf("Display = %q, want %q", ep.Display, want)
	}
	if ep.Name != want || ep.CleanupPath != want {
		t.Fatalf("got %+v", ep)
	}
}

func TestEnvOverrideUsedWhenNoProcessOverride(t *testing.T) {
	defer SetOverride("")
	SetOverride("")
	dir := t.TempDir()
	want := filepath.Join(dir, "env.sock")

	t.Setenv(EnvOverride, want)
	ep, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ep.Display != want {
		t.Fatalf("Display = %q, want %q", ep.Display, want)
	}
}

// §8: set_socket_override(X); socket_endpoint().display == X holds for any
// non-empty X, including a relative path.
func TestRelativeOverrideRoundTrips(t *testing.T) {
	defer SetOverride("")
	want := "relative/path.sock"
	SetOverride(want)
	ep, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ep.Display != want {
		t.Fatalf("Display = %q, want %q", ep.Display, want)
	}
}

func TestDefaultEndpointUnderHome(t *testing.T) {
	defer SetOverride("")
	SetOverride("")
	t.Setenv(EnvOverride, "")
	home := t.TempDir()
	t.Setenv("HOME", home)

	ep, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := filepath.Join(home, ".tenex", "run", "muxd.sock")
	if ep.Display != want {
		t.Fatalf("Display = %q, want %q", ep.Display, want)
	}
	if _, err := os.Stat(filepath.Dir(want)); err != nil {
		t.Fatalf("runtime dir not created: %v", err)
	}
}
