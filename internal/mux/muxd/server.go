// Package muxd implements C8: the accept loop, per-connection handler, and
// single-instance arbitration for the mux daemon.
package muxd

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"tenexmux/internal/mux/dispatch"
	"tenexmux/internal/mux/endpoint"
	"tenexmux/internal/mux/framing"
	"tenexmux/internal/mux/protocol"
	"tenexmux/internal/mux/registry"
)

// PingTimeout bounds the single-instance arbitration probe (§4.8, §5).
const PingTimeout = 250 * time.Millisecond

// ErrAlreadyRunning is returned by Run when another daemon already owns the
// endpoint; the caller should exit cleanly, not treat this as a failure.
var ErrAlreadyRunning = errors.New("muxd: another daemon already owns this endpoint")

// Run binds the endpoint (arbitrating with any existing daemon), then
// serves connections until the listener is closed or the process exits.
// It blocks for the lifetime of the daemon.
func Run(ep endpoint.Endpoint, reg *registry.Registry, version string) error {
	ln, err := bind(ep)
	if err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			log.Printf("muxd: %s already running at %s", version, ep.Display)
			return nil
		}
		return err
	}
	defer ln.Close()
	defer os.Remove(ep.CleanupPath)

	log.Printf("muxd: %s listening at %s", version, ep.Display)

	disp := dispatch.New(reg, version)
	acceptLoop(ln, disp)
	return nil
}

// bind implements §4.8's single-instance arbitration: attempt to bind; on
// "address in use", ping the existing owner with a deadline; if it answers,
// another daemon owns the endpoint and we defer to it; otherwise the
// socket is stale, so unlink it (under a flock guarding the unlink against
// a concurrently-starting daemon racing the same cleanup) and retry the
// bind exactly once.
func bind(ep endpoint.Endpoint) (net.Listener, error) {
	ln, err := net.Listen("unix", ep.Name)
	if err == nil {
		return ln, nil
	}
	if !isAddrInUse(err) {
		return nil, fmt.Errorf("muxd: bind %s: %w", ep.Display, err)
	}

	if pingExisting(ep) {
		return nil, ErrAlreadyRunning
	}

	lockPath := ep.CleanupPath + ".lock"
	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("muxd: lock %s: %w", lockPath, err)
	}
	defer fl.Unlock()

	// Re-probe under the lock: another daemon may have won the race and
	// finished its own cleanup-and-rebind while we waited for the flock.
	if pingExisting(ep) {
		return nil, ErrAlreadyRunning
	}

	if err := os.Remove(ep.CleanupPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("muxd: remove stale socket %s: %w", ep.CleanupPath, err)
	}

	ln, err = net.Listen("unix", ep.Name)
	if err != nil {
		return nil, fmt.Errorf("muxd: bind %s after cleanup: %w", ep.Display, err)
	}
	return ln, nil
}

func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}

// pingExisting connects to ep and sends Ping with PingTimeout; it reports
// true only on a valid Pong reply.
func pingExisting(ep endpoint.Endpoint) bool {
	conn, err := net.DialTimeout("unix", ep.Name, PingTimeout)
	if err != nil {
		return false
	}
	defer conn.Close()

	deadline := time.Now().Add(PingTimeout)
	if err := framing.WriteDeadline(conn, protocol.Request{Type: protocol.ReqPing}, deadline); err != nil {
		return false
	}
	var resp protocol.Response
	if err := framing.ReadDeadline(conn, &resp, deadline); err != nil {
		return false
	}
	return resp.Type == protocol.RespPong
}

// acceptLoop spawns one handler goroutine per accepted connection until
// Accept fails (listener closed).
func acceptLoop(ln net.Listener, disp *dispatch.Dispatcher) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go handleConn(conn, disp)
	}
}

// handleConn reads one request, dispatches, writes one response, and
// repeats until the peer closes or framing fails (§4.8). Framing errors
// end the connection silently (§7 Framing).
func handleConn(conn net.Conn, disp *dispatch.Dispatcher) {
	defer conn.Close()
	for {
		var req protocol.Request
		if err := framing.Read(conn, &req); err != nil {
			return
		}
		resp := disp.Dispatch(req)
		if err := framing.Write(conn, resp); err != nil {
			return
		}
	}
}

// EnsureCleanupDir creates the parent directory of a filesystem socket
// endpoint before binding.
func EnsureCleanupDir(ep endpoint.Endpoint) error {
	if ep.CleanupPath == "" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(ep.CleanupPath), 0o700)
}
