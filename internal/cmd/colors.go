package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tenexmux/internal/mux/muxconfig"
	"tenexmux/internal/mux/terminal"
)

type terminalColorHints struct {
	OscFg string `json:"osc_fg,omitempty"`
	OscBg string `json:"osc_bg,omitempty"`
	Dark  bool   `json:"dark"`
}

// detectTerminalColorHints inspects this process's own stdout terminal, for
// clients that attach a real terminal to a window's output outside the
// daemon's protocol (§11 DOMAIN STACK). The daemon itself never calls this;
// it always answers OSC10/OSC11 with the fixed values of §4.3.4.
func detectTerminalColorHints() terminalColorHints {
	var hints terminalColorHints
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return hints
	}

	output := termenv.NewOutput(os.Stdout)
	if fg := output.ForegroundColor(); fg != nil {
		hints.OscFg = terminal.ColorToX11(fg)
	}
	if bg := output.BackgroundColor(); bg != nil {
		hints.OscBg = terminal.ColorToX11(bg)
	}
	hints.Dark = output.HasDarkBackground()
	return hints
}

func newColorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "colors",
		Short:  "Print this terminal's detected OSC10/OSC11 colors",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hints := detectTerminalColorHints()
			data, err := json.MarshalIndent(hints, "", "  ")
			if err != nil {
				return err
			}
			cachePath := filepath.Join(muxconfig.Dir(), "terminal-colors.json")
			_ = os.MkdirAll(filepath.Dir(cachePath), 0o700)
			_ = os.WriteFile(cachePath, append(data, '\n'), 0o600)
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		},
	}
}
