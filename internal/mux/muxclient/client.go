// Package muxclient implements C9: a lazily-connecting client with
// auto-spawn of the daemon and reconnect-once-and-replay semantics, plus
// cross-generation socket discovery.
package muxclient

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"sync"
	"time"

	"tenexmux/internal/mux/endpoint"
	"tenexmux/internal/mux/framing"
	"tenexmux/internal/mux/protocol"
)

// spawnPollInterval and spawnPollAttempts bound the ~500ms auto-spawn
// connect poll (§4.9).
const (
	spawnPollInterval = 25 * time.Millisecond
	spawnPollAttempts = 20
)

// Client lazily opens a connection to the daemon at Endpoint on first
// request, reconnecting exactly once and replaying only the failed request
// on I/O failure (§4.9).
type Client struct {
	Endpoint endpoint.Endpoint

	mu   sync.Mutex
	conn net.Conn
}

// New returns a Client for ep. The connection is not opened until the
// first Request call.
func New(ep endpoint.Endpoint) *Client {
	return &Client{Endpoint: ep}
}

// Request sends req and returns the daemon's response, auto-spawning the
// daemon on first connect and reconnecting+replaying once on failure.
func (c *Client) Request(req protocol.Request) (protocol.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.ensureConnectedLocked(); err != nil {
			return protocol.Response{}, err
		}
	}

	resp, err := c.roundTrip(req)
	if err == nil {
		return resp, nil
	}

	c.invalidateLocked()
	if err := c.ensureConnectedLocked(); err != nil {
		return protocol.Response{}, fmt.Errorf("muxclient: reconnect failed: %w", err)
	}
	resp, err = c.roundTrip(req)
	if err != nil {
		c.invalidateLocked()
		return protocol.Response{}, fmt.Errorf("muxclient: request failed after reconnect: %w", err)
	}
	return resp, nil
}

func (c *Client) roundTrip(req protocol.Request) (protocol.Response, error) {
	if err := framing.Write(c.conn, req); err != nil {
		return protocol.Response{}, err
	}
	var resp protocol.Response
	if err := framing.Read(c.conn, &resp); err != nil {
		return protocol.Response{}, err
	}
	return resp, nil
}

func (c *Client) invalidateLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) ensureConnectedLocked() error {
	if conn, err := net.DialTimeout("unix", c.Endpoint.Name, 250*time.Millisecond); err == nil {
		c.conn = conn
		return nil
	}

	if err := spawnDaemon(c.Endpoint); err != nil {
		return fmt.Errorf("muxclient: spawn daemon: %w", err)
	}

	var lastErr error
	for i := 0; i < spawnPollAttempts; i++ {
		conn, err := net.DialTimeout("unix", c.Endpoint.Name, 250*time.Millisecond)
		if err == nil {
			c.conn = conn
			return nil
		}
		lastErr = err
		time.Sleep(spawnPollInterval)
	}
	return fmt.Errorf("muxclient: daemon did not come up at %s: %w", c.Endpoint.Display, lastErr)
}

// Close closes any open connection. The Client may be reused afterward.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
}

// spawnDaemon launches the current executable's hidden muxd subcommand
// with TENEX_MUX_SOCKET set to ep's display form, in a new process group on
// platforms that support one so a Ctrl-C in the caller's terminal does not
// kill the daemon (§4.9).
func spawnDaemon(ep endpoint.Endpoint) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("find executable: %w", err)
	}

	cmd := exec.Command(exe, "muxd")
	cmd.Env = append(os.Environ(), endpoint.EnvOverride+"="+ep.Display)
	cmd.SysProcAttr = detachedProcAttr()

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open /dev/null: %w", err)
	}
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull

	if err := cmd.Start(); err != nil {
		devNull.Close()
		return fmt.Errorf("start daemon: %w", err)
	}

	go func() {
		cmd.Wait()
		devNull.Close()
	}()

	return nil
}
