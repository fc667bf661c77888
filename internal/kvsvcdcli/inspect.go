package kvsvcdcli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/typedkv/kvsvc/internal/config"
	"github.com/typedkv/kvsvc/internal/kvstore"
	"github.com/typedkv/kvsvc/internal/txnlog"
)

// NewInspectCommand builds the "inspect" subcommand: print per-type
// row counts and page accounting without starting the server.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "inspect",
		Short:         "Print store statistics",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, cmd)
		},
	}
	return cmd
}

func runInspect(rootOpts *RootOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(rootOpts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := kvstore.Open(cfg.DBPath, txnlog.Discard)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	stats, err := store.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "db: %s\n", cfg.DBPath)
	fmt.Fprintf(out, "pages: %d x %d bytes\n", stats.PageCount, stats.PageSize)
	for _, typ := range kvstore.SortedTypes(stats) {
		fmt.Fprintf(out, "  %s: %d\n", typ, stats.TypeCounts[typ])
	}
	return nil
}
