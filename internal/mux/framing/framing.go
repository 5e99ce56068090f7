// Package framing implements the wire encoding shared by the mux client and
// daemon: a little-endian u32 length prefix followed by a JSON payload.
package framing

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// ErrTimeout is returned by the deadline variants when the read or write
// does not complete before the deadline.
var ErrTimeout = errors.New("framing: timed out")

// maxMessageSize guards against a corrupt or hostile length prefix causing
// an unbounded allocation.
const maxMessageSize = 64 << 20

// Write encodes v as length-prefixed JSON and writes it to w, flushing
// immediately if w supports it.
func Write(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("framing: marshal: %w", err)
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("framing: write length: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("framing: write body: %w", err)
	}
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

type flusher interface {
	Flush() error
}

// Read decodes one length-prefixed JSON message from r into v.
func Read(r io.Reader, v any) error {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return fmt.Errorf("framing: read length: %w", err)
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > maxMessageSize {
		return fmt.Errorf("framing: message of %d bytes exceeds limit", n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return fmt.Errorf("framing: read body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("framing: unmarshal: %w", err)
	}
	return nil
}

// deadlineConn is the subset of net.Conn needed by the deadline variants.
type deadlineConn interface {
	io.Reader
	io.Writer
	SetDeadline(time.Time) error
}

// WriteDeadline behaves like Write but fails with ErrTimeout if the
// operation does not complete before deadline.
func WriteDeadline(conn deadlineConn, v any, deadline time.Time) error {
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}
	defer conn.SetDeadline(time.Time{})
	err := Write(conn, v)
	if isTimeout(err) {
		return ErrTimeout
	}
	return err
}

// ReadDeadline behaves like Read but fails with ErrTimeout if the operation
// does not complete before deadline.
func ReadDeadline(conn deadlineConn, v any, deadline time.Time) error {
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}
	defer conn.SetDeadline(time.Time{})
	err := Read(conn, v)
	if isTimeout(err) {
		return ErrTimeout
	}
	return err
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
