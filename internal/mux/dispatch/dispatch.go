// Package dispatch implements C7: a pure function from protocol.Request to
// protocol.Response, delegating to the registry/session/window layers and
// converting any error into Err{message} (§4.7).
package dispatch

import (
	"time"

	"tenexmux/internal/mux/muxerr"
	"tenexmux/internal/mux/protocol"
	"tenexmux/internal/mux/registry"
	"tenexmux/internal/mux/session"
	"tenexmux/internal/mux/terminal"
	"tenexmux/internal/mux/window"
)

// Dispatcher delegates requests to one Registry. version is reported by
// Ping (§6 Daemon version string).
type Dispatcher struct {
	Registry *registry.Registry
	Version  string

	// Now is overridable for tests; defaults to time.Now().Unix().
	Now func() int64
}

// New returns a Dispatcher over r advertising version.
func New(r *registry.Registry, version string) *Dispatcher {
	return &Dispatcher{Registry: r, Version: version, Now: func() int64 { return time.Now().Unix() }}
}

// Dispatch handles one request and always returns a Response: either a
// successful variant or Err{message} (§4.7 "no partial success").
func (d *Dispatcher) Dispatch(req protocol.Request) protocol.Response {
	resp, err := d.handle(req)
	if err != nil {
		return protocol.Err(err.Error())
	}
	return resp
}

func (d *Dispatcher) handle(req protocol.Request) (protocol.Response, error) {
	switch req.Type {
	case protocol.ReqPing:
		return protocol.Pong(d.Version), nil

	case protocol.ReqListSessions:
		return d.listSessions(), nil

	case protocol.ReqSessionExists:
		return protocol.Bool(d.Registry.Exists(req.Name)), nil

	case protocol.ReqCreateSession:
		rows, cols := orDefault(req.Rows, terminal.DefaultRows), orDefault(req.Cols, terminal.DefaultCols)
		if err := d.Registry.Create(req.Name, req.WorkingDir, req.Command, rows, cols, d.Now()); err != nil {
			return protocol.Response{}, err
		}
		return protocol.Ok(), nil

	case protocol.ReqKillSession:
		if err := d.Registry.Kill(req.Name); err != nil {
			return protocol.Response{}, err
		}
		return protocol.Ok(), nil

	case protocol.ReqRenameSession:
		if err := d.Registry.Rename(req.OldName, req.NewName); err != nil {
			return protocol.Response{}, err
		}
		return protocol.Ok(), nil

	case protocol.ReqListWindows:
		s, err := d.Registry.Get(req.Session)
		if err != nil {
			return protocol.Response{}, err
		}
		return protocol.Windows(toWindowInfos(s.ListWindows())), nil

	case protocol.ReqCreateWindow:
		s, err := d.Registry.Get(req.Session)
		if err != nil {
			return protocol.Response{}, err
		}
		rows, cols := orDefault(req.Rows, terminal.DefaultRows), orDefault(req.Cols, terminal.DefaultCols)
		idx, err := s.CreateWindow(req.WindowName, req.WorkingDir, req.Command, rows, cols)
		if err != nil {
			return protocol.Response{}, err
		}
		return protocol.WindowCreated(idx), nil

	case protocol.ReqKillWindow:
		s, err := d.Registry.Get(req.Session)
		if err != nil {
			return protocol.Response{}, err
		}
		if err := s.KillWindow(req.WindowIndex); err != nil {
			return protocol.Response{}, err
		}
		return protocol.Ok(), nil

	case protocol.ReqRenameWindow:
		s, err := d.Registry.Get(req.Session)
		if err != nil {
			return protocol.Response{}, err
		}
		if err := s.RenameWindow(req.WindowIndex, req.NewName); err != nil {
			return protocol.Response{}, err
		}
		return protocol.Ok(), nil

	case protocol.ReqResize:
		w, err := d.resolveTarget(req.Target)
		if err != nil {
			return protocol.Response{}, err
		}
		if err := w.Resize(req.Cols, req.Rows); err != nil {
			return protocol.Response{}, err
		}
		return protocol.Ok(), nil

	case protocol.ReqSendInput:
		w, err := d.resolveTarget(req.Target)
		if err != nil {
			return protocol.Response{}, err
		}
		if err := w.SendInput(req.Data); err != nil {
			return protocol.Response{}, err
		}
		return protocol.Ok(), nil

	case protocol.ReqCapture:
		w, err := d.resolveTarget(req.Target)
		if err != nil {
			return protocol.Response{}, err
		}
		return protocol.Text(capture(w, req.Kind)), nil

	case protocol.ReqPaneSize:
		w, err := d.resolveTarget(req.Target)
		if err != nil {
			return protocol.Response{}, err
		}
		cols, rows := w.Size()
		return protocol.Size(cols, rows), nil

	case protocol.ReqCursorPosition:
		w, err := d.resolveTarget(req.Target)
		if err != nil {
			return protocol.Response{}, err
		}
		row, col, hidden := w.Model.CursorPosition()
		return protocol.Position(col, row, hidden), nil

	case protocol.ReqPaneCurrentCommand:
		w, err := d.resolveTarget(req.Target)
		if err != nil {
			return protocol.Response{}, err
		}
		return protocol.Text(w.CurrentCommand()), nil

	case protocol.ReqTail:
		w, err := d.resolveTarget(req.Target)
		if err != nil {
			return protocol.Response{}, err
		}
		return protocol.Text(w.Model.Tail(req.Lines)), nil

	case protocol.ReqListPanePids:
		s, err := d.Registry.Get(req.Session)
		if err != nil {
			return protocol.Response{}, err
		}
		return protocol.Pids(s.ListPanePids()), nil

	default:
		return protocol.Response{}, muxerr.Newf(muxerr.InvalidTarget, "unknown request type %q", req.Type)
	}
}

func (d *Dispatcher) resolveTarget(target string) (*window.Window, error) {
	t, err := protocol.ParseTarget(target)
	if err != nil {
		return nil, err
	}
	s, err := d.Registry.Get(t.Session)
	if err != nil {
		return nil, err
	}
	return s.Window(t.WindowIndex)
}

func (d *Dispatcher) listSessions() protocol.Response {
	infos := d.Registry.List()
	out := make([]protocol.SessionInfo, len(infos))
	for i, s := range infos {
		out[i] = protocol.SessionInfo{Name: s.Name, Created: s.Created, Windows: s.Windows}
	}
	return protocol.Sessions(out)
}

func toWindowInfos(in []session.WindowInfo) []protocol.WindowInfo {
	out := make([]protocol.WindowInfo, len(in))
	for i, w := range in {
		out[i] = protocol.WindowInfo{Index: w.Index, Name: w.Name, WorkingDir: w.WorkingDir}
	}
	return out
}

func capture(w *window.Window, kind protocol.CaptureKind) string {
	switch kind.Kind {
	case protocol.CaptureHistory:
		return w.Model.Tail(kind.Lines)
	case protocol.CaptureFullHistory:
		return w.Model.Full()
	default:
		return w.Model.RenderVisible()
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
