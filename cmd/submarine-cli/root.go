package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yuanzac/submarine/internal/client"
)

type globalOpts struct {
	server   string
	user     string
	password string
	token    string
}

func newRootCmd() *cobra.Command {
	opts := &globalOpts{}
	cmd := &cobra.Command{
		Use:           "submarine-cli",
		Short:         "Command line access to the submarine admin API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.server, "server", envOr("SUBMARINE_SERVER", "http://localhost:8080"), "Server base URL")
	cmd.PersistentFlags().StringVar(&opts.user, "user", envOr("SUBMARINE_USER", "admin"), "Login user")
	cmd.PersistentFlags().StringVar(&opts.password, "password", envOr("SUBMARINE_PASSWORD", ""), "Login password")
	cmd.PersistentFlags().StringVar(&opts.token, "token", envOr("SUBMARINE_TOKEN", ""), "Existing session token (skips login)")

	cmd.AddCommand(newTreeCmd(opts))
	cmd.AddCommand(newSelectCmd(opts))
	cmd.AddCommand(newExportCmd(opts))
	return cmd
}

// connect returns a client holding a session token.
func connect(cmd *cobra.Command, opts *globalOpts) (*client.Client, error) {
	c := client.New(opts.server, zap.NewNop())
	if opts.token != "" {
		c.SetToken(opts.token)
		return c, nil
	}
	if _, err := c.Login(cmd.Context(), opts.user, opts.password); err != nil {
		return nil, err
	}
	return c, nil
}
