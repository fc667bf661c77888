// Package kvsvcdcli wires kvsvcd's cobra subcommands: serve, migrate,
// and inspect.
package kvsvcdcli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds flags shared across every subcommand.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand builds the kvsvcd root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "kvsvcd",
		Short: "kvsvcd - typed key-value service",
		Long:  "kvsvcd hosts a typed key-value store backed by an embedded SQL database, with a durable JSON-Lines transaction log.",
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "kvsvcd.yaml", "path to the service config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose process logging")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))

	return cmd
}
