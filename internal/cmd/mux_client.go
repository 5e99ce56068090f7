package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/shlex"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tenexmux/internal/mux/endpoint"
	"tenexmux/internal/mux/muxclient"
	"tenexmux/internal/mux/protocol"
)

// newMuxClientCmd groups the CLI sugar client commands of §12.2: they are
// conveniences layered on muxclient, not part of the daemon's own surface.
func newMuxClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mux",
		Short: "Talk to the terminal mux daemon",
	}
	cmd.AddCommand(
		newMuxListCmd(),
		newMuxNewCmd(),
		newMuxSendCmd(),
		newMuxAttachCmd(),
		newMuxKillCmd(),
	)
	return cmd
}

func muxClient() (*muxclient.Client, error) {
	ep, err := endpoint.Resolve()
	if err != nil {
		return nil, err
	}
	return muxclient.New(ep), nil
}

func newMuxListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions known to the mux daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := muxClient()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.Request(protocol.Request{Type: protocol.ReqListSessions})
			if err != nil {
				return err
			}
			for _, s := range resp.Sessions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d window(s)\n", s.Name, len(s.Windows))
			}
			return nil
		},
	}
}

func newMuxNewCmd() *cobra.Command {
	var rawCmd string
	var workingDir string
	c := &cobra.Command{
		Use:   "new [name]",
		Short: "Create a new mux session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			} else {
				name = uuid.NewString()
			}

			var argv []string
			if rawCmd != "" {
				split, err := shlex.Split(rawCmd)
				if err != nil {
					return fmt.Errorf("parsing --cmd: %w", err)
				}
				argv = split
			}

			// The daemon has its own working directory, so a relative
			// --cwd is resolved against this process's directory first.
			if workingDir != "" {
				abs, err := filepath.Abs(workingDir)
				if err != nil {
					return fmt.Errorf("resolving --cwd: %w", err)
				}
				workingDir = abs
			}

			cli, err := muxClient()
			if err != nil {
				return err
			}
			defer cli.Close()
			resp, err := cli.Request(protocol.Request{
				Type:       protocol.ReqCreateSession,
				Name:       name,
				WorkingDir: workingDir,
				Command:    argv,
			})
			if err != nil {
				return err
			}
			if resp.Type == protocol.RespErr {
				return fmt.Errorf("%s", resp.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
	c.Flags().StringVar(&rawCmd, "cmd", "", "shell-style command line to run instead of the default shell")
	c.Flags().StringVar(&workingDir, "cwd", "", "working directory for the root window")
	return c
}

func newMuxSendCmd() *cobra.Command {
	var submit bool
	c := &cobra.Command{
		Use:   "send <target> <text>",
		Short: "Send keystrokes to a window",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := muxClient()
			if err != nil {
				return err
			}
			defer cli.Close()
			if submit {
				return cli.SendKeysAndSubmit(args[0], args[1])
			}
			return cli.SendKeys(args[0], args[1])
		},
	}
	c.Flags().BoolVar(&submit, "submit", false, "append a carriage return after the text")
	return c
}

func newMuxKillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill <session>",
		Short: "Kill a mux session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := muxClient()
			if err != nil {
				return err
			}
			defer cli.Close()
			resp, err := cli.Request(protocol.Request{Type: protocol.ReqKillSession, Name: args[0]})
			if err != nil {
				return err
			}
			if resp.Type == protocol.RespErr {
				return fmt.Errorf("%s", resp.Message)
			}
			return nil
		},
	}
}

// newMuxAttachCmd prints the invocation a user would run to attach; true
// attach is out of scope (§1 Non-goals, §12.2).
func newMuxAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <target>",
		Short: "Print the attach command for target (attach itself is not supported)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), muxclient.AttachCommand(os.Args[0], args[0]))
			return nil
		},
	}
}
