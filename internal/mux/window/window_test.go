package window

import (
	"strings"
	"testing"
	"time"

	"tenexmux/internal/mux/muxerr"
)

func TestSpawnDefaultShellAndKill(t *testing.T) {
	w, err := Spawn(0, "s1", "", nil, 24, 80)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if !w.Alive() {
		t.Fatalf("expected window alive right after spawn")
	}
	if w.PID() == 0 {
		t.Fatalf("expected non-zero pid")
	}
	if err := w.Kill(); err != nil {
		t.Fatalf("Kill: %v", err)
	}
	waitUntil(t, time.Second, func() bool { return !w.Alive() })
}

func TestSpawnRejectsExplicitEmptyArgv(t *testing.T) {
	_, err := Spawn(0, "s1", "", []string{}, 24, 80)
	if muxerr.KindOf(err) != muxerr.InvalidArgv {
		t.Fatalf("got %v, want InvalidArgv", err)
	}
}

func TestCurrentCommandDefaultsToShell(t *testing.T) {
	w, err := Spawn(0, "s1", "", nil, 24, 80)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer w.Kill()
	if w.CurrentCommand() == "" {
		t.Fatalf("expected non-empty default shell name")
	}
}

func TestCurrentCommandReportsArgv0Only(t *testing.T) {
	w, err := Spawn(0, "s1", "", []string{"sh", "-c", "sleep 30"}, 24, 80)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer w.Kill()
	if w.CurrentCommand() != "sh" {
		t.Fatalf("CurrentCommand() = %q, want %q", w.CurrentCommand(), "sh")
	}
}

func TestResizeUpdatesReportedSize(t *testing.T) {
	w, err := Spawn(0, "s1", "", []string{"sh", "-c", "sleep 30"}, 24, 80)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer w.Kill()

	if err := w.Resize(100, 40); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	cols, rows := w.Size()
	if cols != 100 || rows != 40 {
		t.Fatalf("Size() = (%d,%d), want (100,40)", cols, rows)
	}
}

// This test does not exercise the query reply path of §8 scenario 4 (no
// query is sent). It checks, through a real PTY round trip, that input
// written to a child running cat is echoed into the visible render without
// the reader thread hanging or panicking.
func TestSendInputAndCaptureVisible(t *testing.T) {
	w, err := Spawn(0, "s1", "", []string{"sh", "-c", "cat"}, 24, 80)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer w.Kill()

	if err := w.SendInput([]byte("hello-window-test\n")); err != nil {
		t.Fatalf("SendInput: %v", err)
	}

	waitUntil(t, 2*time.Second, func() bool {
		return strings.Contains(w.Model.RenderVisible(), "hello-window-test")
	})
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !cond() {
		t.Fatalf("condition not met within %v", timeout)
	}
}
