package cmd

import (
	"github.com/spf13/cobra"

	"tenexmux/internal/mux/endpoint"
	"tenexmux/internal/mux/muxd"
	"tenexmux/internal/mux/registry"
	"tenexmux/internal/version"
)

// newMuxdCmd is the hidden subcommand that starts the mux daemon in the
// foreground, honoring TENEX_MUX_SOCKET if set (§6 CLI surface).
func newMuxdCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "muxd",
		Short:  "Run the terminal mux daemon (internal)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ep, err := endpoint.Resolve()
			if err != nil {
				return err
			}
			if err := muxd.EnsureCleanupDir(ep); err != nil {
				return err
			}
			reg := registry.New()
			return muxd.Run(ep, reg, "tenex-mux/"+version.Version)
		},
	}
}
