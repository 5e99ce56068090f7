package muxclient

import (
	"path/filepath"
	"strings"

	"tenexmux/internal/mux/protocol"
)

// SendKeys writes raw bytes to target with no trailing newline (§12.1).
func (c *Client) SendKeys(target, text string) error {
	_, err := c.Request(protocol.Request{Type: protocol.ReqSendInput, Target: target, Data: []byte(text)})
	return err
}

// SendKeysAndSubmit writes text followed by a carriage return (§12.1).
func (c *Client) SendKeysAndSubmit(target, text string) error {
	return c.SendKeys(target, text+"\r")
}

// PasteKeysAndSubmit wraps text in bracketed-paste markers before
// submitting it, for programs that treat pasted text differently from
// typed text (§12.1).
func (c *Client) PasteKeysAndSubmit(target, text string) error {
	return c.SendKeys(target, "\x1b[200~"+text+"\x1b[201~\r")
}

// SendKeysAndSubmitForProgram sends input using a program-specific
// strategy. Bracketed paste sequences break some default shells (notably
// macOS bash), so plain SendKeysAndSubmit is the default for every program.
// The one exception is codex: when the caller declares program to be codex,
// this confirms the window is still actually running it via a live
// PaneCurrentCommand check before switching to PasteKeysAndSubmit; any
// mismatch (including a failed check) falls back to the safe plain submit
// (§12.1).
func (c *Client) SendKeysAndSubmitForProgram(target, program, text string) error {
	if exeStem(program) != "codex" {
		return c.SendKeysAndSubmit(target, text)
	}

	resp, err := c.Request(protocol.Request{Type: protocol.ReqPaneCurrentCommand, Target: target})
	if err == nil && exeStem(resp.Text) == "codex" {
		return c.PasteKeysAndSubmit(target, text)
	}
	return c.SendKeysAndSubmit(target, text)
}

// exeStem returns the basename of the first whitespace-separated field of
// program, stripping any extension, matching the original's
// argv[0]-file_stem comparison.
func exeStem(program string) string {
	fields := strings.Fields(program)
	if len(fields) == 0 {
		return ""
	}
	base := filepath.Base(fields[0])
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// AttachCommand returns the CLI invocation a user would run to attach to
// target, for display purposes only; true attach is not supported (§1
// Non-goals, §12.2).
func AttachCommand(binary, target string) string {
	return strings.Join([]string{binary, "attach", target}, " ")
}
