// Package window implements C4: one PTY pair, its child process, its
// terminal model, and the reader thread that feeds PTY bytes into the
// model and answers in-band terminal queries.
package window

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/creack/pty"

	"tenexmux/internal/mux/muxerr"
	"tenexmux/internal/mux/terminal"
)

// Window owns one PTY + child process + terminal model (§3 Window, §4.4).
type Window struct {
	Index      int
	Name       string
	WorkingDir string
	Command    []string // frozen at spawn

	Model *terminal.Model

	mu   sync.Mutex // guards ptm writes and rows/cols bookkeeping
	ptm  *os.File
	cmd  *exec.Cmd
	rows int
	cols int
	pid  int

	exited atomic.Bool
}

// Spawn opens a PTY, starts the child, and launches the reader thread.
// index is the window's position within its session at spawn time; the
// session is responsible for keeping it in sync across renumbering.
func Spawn(index int, name, workingDir string, command []string, rows, cols int) (*Window, error) {
	if rows <= 0 {
		rows = terminal.DefaultRows
	}
	if cols <= 0 {
		cols = terminal.DefaultCols
	}
	if command != nil && len(command) == 0 {
		return nil, muxerr.New(muxerr.InvalidArgv, "cannot spawn with empty argv")
	}

	argv := command
	if argv == nil {
		argv = []string{defaultShell()}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if workingDir != "" {
		cmd.Dir = workingDir
	}

	ptm, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, muxerr.Wrap(muxerr.PtyIO, "spawn pty", err)
	}

	w := &Window{
		Index:      index,
		Name:       name,
		WorkingDir: workingDir,
		Command:    command,
		Model:      terminal.NewModel(rows, cols, terminal.DefaultScrollback),
		ptm:        ptm,
		cmd:        cmd,
		rows:       rows,
		cols:       cols,
	}
	if cmd.Process != nil {
		w.pid = cmd.Process.Pid
	}

	go w.readLoop()
	go w.waitForExit()

	return w, nil
}

// waitForExit reaps the child once it exits so Alive() can observe it and
// the OS doesn't accumulate a zombie. It is the one place cmd.Wait() is
// called; Kill never waits itself (§3 Lifecycle).
func (w *Window) waitForExit() {
	w.cmd.Wait()
	w.exited.Store(true)
}

func defaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// readLoop reads PTY output in <=4KiB chunks, feeds it to the terminal
// model, and answers in-band queries. It exits silently on EOF or any read
// error (§4.4, §4.3.4); the child is left running.
func (w *Window) readLoop() {
	scanner := terminal.NewQueryScanner()
	buf := make([]byte, 4096)
	for {
		n, err := w.ptm.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			w.Model.Process(chunk)
			row, col, _ := w.Model.CursorPosition()
			if reply := scanner.Scan(chunk, row, col); reply != nil {
				w.mu.Lock()
				_, writeErr := w.ptm.Write(reply)
				w.mu.Unlock()
				if writeErr != nil {
					log.Printf("window %d: query reply write failed: %v", w.Index, writeErr)
					return
				}
			}
		}
		if err != nil {
			return
		}
	}
}

// SendInput writes raw bytes to the child's PTY and flushes immediately.
func (w *Window) SendInput(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.ptm.Write(data); err != nil {
		return muxerr.Wrap(muxerr.PtyIO, "write to pty", err)
	}
	return nil
}

// Resize updates the PTY and the terminal model to the new size.
func (w *Window) Resize(cols, rows int) error {
	w.mu.Lock()
	w.rows, w.cols = rows, cols
	ptm := w.ptm
	w.mu.Unlock()

	if err := pty.Setsize(ptm, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}); err != nil {
		return muxerr.Wrap(muxerr.PtyIO, "resize pty", err)
	}
	w.Model.SetSize(rows, cols)
	return nil
}

// Size reports the window's last-applied (cols, rows).
func (w *Window) Size() (cols, rows int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cols, w.rows
}

// PID returns the child's OS process ID, or 0 if it was never started.
func (w *Window) PID() int {
	return w.pid
}

// Alive reports whether the child has not yet been observed to exit.
func (w *Window) Alive() bool {
	if w.cmd == nil || w.cmd.Process == nil {
		return false
	}
	return !w.exited.Load()
}

// Kill signals the child to terminate. The reader thread observes the
// resulting PTY closure on its own; Kill does not wait for it.
func (w *Window) Kill() error {
	if w.cmd == nil || w.cmd.Process == nil {
		return nil
	}
	if err := w.cmd.Process.Kill(); err != nil {
		return muxerr.Wrap(muxerr.PtyIO, fmt.Sprintf("kill window %d", w.Index), err)
	}
	return nil
}

// CurrentCommand returns the argv[0] the window was spawned with, the way
// the original implementation's pane_current_command reports just the
// program name, not the full command line.
func (w *Window) CurrentCommand() string {
	if len(w.Command) > 0 {
		return w.Command[0]
	}
	return defaultShell()
}
