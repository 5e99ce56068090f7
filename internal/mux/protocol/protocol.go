// Package protocol defines the mux daemon's wire request/response schema
// (§4.7/§6) and the WindowTarget addressing scheme (§3).
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"tenexmux/internal/mux/muxerr"
)

// Request is tagged by Type; only the fields relevant to that type are
// populated. This mirrors the Rust original's enum-of-structs shape within
// Go's lack of sum types: one flat struct, discriminated by Type.
type Request struct {
	Type string `json:"type"`

	Name    string `json:"name,omitempty"`
	OldName string `json:"old_name,omitempty"`
	NewName string `json:"new_name,omitempty"`

	Session string `json:"session,omitempty"`
	Target  string `json:"target,omitempty"`

	WindowName  string `json:"window_name,omitempty"`
	WindowIndex int    `json:"window_index,omitempty"`

	WorkingDir string   `json:"working_dir,omitempty"`
	Command    []string `json:"command,omitempty"`
	Cols       int      `json:"cols,omitempty"`
	Rows       int      `json:"rows,omitempty"`

	Data []byte `json:"data,omitempty"`

	Kind  CaptureKind `json:"kind,omitempty"`
	Lines int         `json:"lines,omitempty"`
}

// Request type discriminants.
const (
	ReqPing               = "ping"
	ReqListSessions       = "list_sessions"
	ReqSessionExists      = "session_exists"
	ReqCreateSession      = "create_session"
	ReqKillSession        = "kill_session"
	ReqRenameSession      = "rename_session"
	ReqListWindows        = "list_windows"
	ReqCreateWindow       = "create_window"
	ReqKillWindow         = "kill_window"
	ReqRenameWindow       = "rename_window"
	ReqResize             = "resize"
	ReqSendInput          = "send_input"
	ReqCapture            = "capture"
	ReqPaneSize           = "pane_size"
	ReqCursorPosition     = "cursor_position"
	ReqPaneCurrentCommand = "pane_current_command"
	ReqTail               = "tail"
	ReqListPanePids       = "list_pane_pids"
)

// CaptureKind selects which capture variant C3 performs (§4.3.3).
type CaptureKind struct {
	Kind  string `json:"kind"`
	Lines int    `json:"lines,omitempty"`
}

const (
	CaptureVisible     = "visible"
	CaptureHistory     = "history"
	CaptureFullHistory = "full_history"
)

// Response is tagged by Type; only the fields relevant to that type are
// populated.
type Response struct {
	Type string `json:"type"`

	Version string `json:"version,omitempty"`

	Sessions []SessionInfo `json:"sessions,omitempty"`
	Windows  []WindowInfo  `json:"windows,omitempty"`

	Index int `json:"index,omitempty"`

	Text  string `json:"text,omitempty"`
	Value bool   `json:"value,omitempty"`

	Cols int `json:"cols,omitempty"`
	Rows int `json:"rows,omitempty"`

	X      int  `json:"x,omitempty"`
	Y      int  `json:"y,omitempty"`
	Hidden bool `json:"hidden,omitempty"`

	Pids []int `json:"pids,omitempty"`

	Message string `json:"message,omitempty"`
}

// Response type discriminants.
const (
	RespOk             = "ok"
	RespPong           = "pong"
	RespSessions       = "sessions"
	RespWindows        = "windows"
	RespWindowCreated  = "window_created"
	RespText           = "text"
	RespBool           = "bool"
	RespSize           = "size"
	RespPosition       = "position"
	RespPids           = "pids"
	RespErr            = "err"
)

// SessionInfo is the list-facing view of a session.
type SessionInfo struct {
	Name    string `json:"name"`
	Created int64  `json:"created"`
	Windows int    `json:"windows"`
}

// WindowInfo is the list-facing view of a window.
type WindowInfo struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	WorkingDir string `json:"working_dir"`
}

// Ok, Pong, and the other response constructors keep call sites in the
// dispatcher terse and typo-proof.
func Ok() Response                   { return Response{Type: RespOk} }
func Pong(version string) Response   { return Response{Type: RespPong, Version: version} }
func Bool(v bool) Response           { return Response{Type: RespBool, Value: v} }
func Text(s string) Response         { return Response{Type: RespText, Text: s} }
func Size(cols, rows int) Response   { return Response{Type: RespSize, Cols: cols, Rows: rows} }
func Pids(pids []int) Response       { return Response{Type: RespPids, Pids: pids} }
func WindowCreated(i int) Response   { return Response{Type: RespWindowCreated, Index: i} }
func Sessions(s []SessionInfo) Response {
	return Response{Type: RespSessions, Sessions: s}
}
func Windows(w []WindowInfo) Response { return Response{Type: RespWindows, Windows: w} }
func Position(x, y int, hidden bool) Response {
	return Response{Type: RespPosition, X: x, Y: y, Hidden: hidden}
}
func Err(message string) Response { return Response{Type: RespErr, Message: message} }

// WindowTarget addresses one window within one session (§3).
type WindowTarget struct {
	Session     string
	WindowIndex int
}

// String formats the inverse of ParseTarget: "session" for index 0,
// "session:N" otherwise. Always produces the canonical explicit form is not
// required by §6; emitting the implicit form for index 0 matches how
// targets are typically written in client code (§12.2).
func (t WindowTarget) String() string {
	if t.WindowIndex == 0 {
		return t.Session
	}
	return fmt.Sprintf("%s:%d", t.Session, t.WindowIndex)
}

// ParseTarget parses "session" (implicit window 0) or "session:N". Any
// other form is InvalidTarget (§6, §7).
func ParseTarget(target string) (WindowTarget, error) {
	if target == "" {
		return WindowTarget{}, muxerr.New(muxerr.InvalidTarget, "empty target")
	}
	idx := strings.IndexByte(target, ':')
	if idx < 0 {
		return WindowTarget{Session: target, WindowIndex: 0}, nil
	}
	session := target[:idx]
	rest := target[idx+1:]
	if session == "" || rest == "" {
		return WindowTarget{}, muxerr.Newf(muxerr.InvalidTarget, "malformed target %q", target)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return WindowTarget{}, muxerr.Newf(muxerr.InvalidTarget, "malformed target %q", target)
	}
	return WindowTarget{Session: session, WindowIndex: n}, nil
}
