package cmd

import (
	"github.com/spf13/cobra"

	"tenexmux/internal/version"
)

// NewRootCmd creates the root cobra command with all subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tenex-mux",
		Short: "Persistent terminal multiplexer daemon and client",
		Long:  "tenex-mux runs a background daemon that owns PTY-backed terminal sessions across client invocations, and a client CLI that talks to it over a Unix socket.",
	}

	rootCmd.AddCommand(
		newMuxdCmd(),
		newMuxClientCmd(),
		newColorsCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tenex-mux version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write([]byte(version.DisplayVersion() + "\n"))
			return err
		},
	}
}
