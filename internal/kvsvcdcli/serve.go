package kvsvcdcli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/typedkv/kvsvc/internal/config"
	"github.com/typedkv/kvsvc/internal/httpapi"
	"github.com/typedkv/kvsvc/internal/kvstore"
	"github.com/typedkv/kvsvc/internal/processlog"
	"github.com/typedkv/kvsvc/internal/txnlog"
)

// NewServeCommand builds the "serve" subcommand: load config, open the
// store, and run the HTTP server until interrupted.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "serve",
		Short:         "Run the HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, cmd)
		},
	}
	return cmd
}

func runServe(rootOpts *RootOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(rootOpts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := processlog.New(cfg.LogDir, rootOpts.Verbose)

	logger := txnlog.NewJSONLLogger(cfg.DBPath)
	defer func() {
		if closeErr := logger.Close(); closeErr != nil {
			log.Error("error closing transaction log", "error", closeErr)
		}
	}()

	store, err := kvstore.Open(cfg.DBPath, logger,
		kvstore.WithListLimits(cfg.DefaultListLimit, cfg.MaxListLimit),
		kvstore.WithMaxValueBytes(cfg.MaxBodyBytes),
	)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Error("error closing store", "error", closeErr)
		}
	}()

	server := httpapi.New(store, cfg, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		return server.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
