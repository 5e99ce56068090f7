// Package terminal wraps github.com/vito/midterm into the mux daemon's
// TerminalModel (§3, §4.3): a VT100-compatible screen with bounded
// scrollback, rendered back to ANSI-attributed text on demand.
package terminal

import (
	"strings"
	"sync"

	"github.com/vito/midterm"
)

// Defaults grounded in the original implementation's mux/backend.rs
// constants.
const (
	DefaultRows       = 24
	DefaultCols       = 80
	DefaultScrollback = 10000
	QueryTailSize     = 32
)

// Model owns the screen grid, scrollback, and cursor state for one window.
// All access goes through its mutex so the reader thread (which calls
// Process) and dispatcher-driven reads (Render*, CursorPosition) never race.
type Model struct {
	mu            sync.Mutex
	term          *midterm.Terminal
	scrollback    []string
	maxScrollback int
	cursorHidden  bool
}

// NewModel creates a Model with the given initial size and scrollback cap.
// maxScrollback <= 0 uses DefaultScrollback.
func NewModel(rows, cols, maxScrollback int) *Model {
	if maxScrollback <= 0 {
		maxScrollback = DefaultScrollback
	}
	m := &Model{
		term:          midterm.NewTerminal(rows, cols),
		maxScrollback: maxScrollback,
	}
	m.term.OnScrollback(func(line midterm.Line) {
		rendered := line.Display() + "\x1b[0m"
		m.scrollback = append(m.scrollback, rendered)
		if len(m.scrollback) > m.maxScrollback {
			trim := len(m.scrollback) - m.maxScrollback
			m.scrollback = m.scrollback[trim:]
		}
	})
	return m
}

// Process feeds raw PTY bytes into the parser. Called from the window's
// reader thread; never called concurrently for the same Model.
func (m *Model) Process(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	updateCursorVisibility(&m.cursorHidden, data)
	m.term.Write(data)
}

// updateCursorVisibility scans data for the DECTCEM show/hide sequences
// (ESC[?25l / ESC[?25h). midterm does not expose cursor visibility itself
// (only Cursor.X/Y), so this tracks it the same way the client-side
// renderer re-asserts visibility after forwarded child output.
func updateCursorVisibility(hidden *bool, data []byte) {
	s := string(data)
	lastHide := strings.LastIndex(s, "\x1b[?25l")
	lastShow := strings.LastIndex(s, "\x1b[?25h")
	if lastHide < 0 && lastShow < 0 {
		return
	}
	*hidden = lastHide > lastShow
}

// SetSize reshapes the screen. Scrollback already captured is preserved.
func (m *Model) SetSize(rows, cols int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.term.Resize(rows, cols)
}

// Size reports the model's current (cols, rows).
func (m *Model) Size() (cols, rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.term.Cols, m.term.Rows
}

// CursorPosition returns the 0-based cursor row/col and hidden flag.
func (m *Model) CursorPosition() (row, col int, hidden bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.term.Cursor.Y, m.term.Cursor.X, m.cursorHidden
}

// RenderVisible renders only the current screen (§4.3.3 Visible).
func (m *Model) RenderVisible() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]string, m.term.Rows)
	for i := 0; i < m.term.Rows; i++ {
		rows[i] = renderRow(m.term, i)
	}
	return strings.Join(rows, "\n")
}

// Tail renders the last n lines across scrollback and the live screen
// (§4.3.3 Tail(n)). n <= 0 means the whole history (Full, §4.3.3).
func (m *Model) Tail(n int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renderTailLocked(n)
}

// Full renders the entire captured scrollback plus the live screen.
func (m *Model) Full() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renderTailLocked(0)
}

// renderTailLocked implements both Tail and Full. The original Rust
// implementation walks scrollback in screen-sized pages and must restore a
// mutable scrollback-view offset on every exit path; this implementation
// has no such mutable view (scrollback is pre-rendered text captured via
// OnScrollback), so there is nothing to restore — concatenation is pure and
// side-effect-free by construction, which trivially satisfies that
// invariant. Blank screen rows below the last non-blank row are left out,
// so the final line is the most recent line of content.
func (m *Model) renderTailLocked(n int) string {
	liveRows := m.term.Rows
	for liveRows > 0 && (liveRows > len(m.term.Content) ||
		strings.Trim(string(m.term.Content[liveRows-1]), " \x00") == "") {
		liveRows--
	}
	live := make([]string, liveRows)
	for i := 0; i < liveRows; i++ {
		live[i] = renderRow(m.term, i)
	}
	total := len(m.scrollback) + len(live)
	if n <= 0 || n > total {
		n = total
	}
	start := total - n
	var lines []string
	if start < len(m.scrollback) {
		lines = append(lines, m.scrollback[start:]...)
		lines = append(lines, live...)
	} else {
		liveStart := start - len(m.scrollback)
		lines = append(lines, live[liveStart:]...)
	}
	return strings.Join(lines, "\n")
}

// renderRow renders one row with an explicit SGR-0 reset at the start and
// end of the row, diffing cell style per region in between. Wide-character
// continuation cells contribute no output because midterm's Format.Regions
// already collapses them into their owning cell's region.
func renderRow(t *midterm.Terminal, row int) string {
	var buf strings.Builder
	buf.WriteString("\x1b[0m")
	if row < len(t.Content) {
		line := t.Content[row]
		var pos int
		var lastFormat midterm.Format
		first := true
		for region := range t.Format.Regions(row) {
			f := region.F
			if first || f != lastFormat {
				buf.WriteString("\x1b[0m")
				buf.WriteString(f.Render())
				lastFormat = f
				first = false
			}
			end := pos + region.Size
			if pos < len(line) {
				contentEnd := end
				if contentEnd > len(line) {
					contentEnd = len(line)
				}
				buf.WriteString(string(line[pos:contentEnd]))
			}
			pos = end
		}
	}
	buf.WriteString("\x1b[0m")
	return buf.String()
}
