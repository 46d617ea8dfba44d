package cli

import (
	"context"

	"github.com/gravitational/trace"
	"github.com/spf13/cobra"

	"sfdecode/internal/logger"
	"sfdecode/internal/statusserver"
)

func newServeStatusCmd(configPath *string, verbose *bool) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve-status",
		Short: "Serve live per-journal decode progress over SSE until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeStatus(cmd.Context(), *configPath, *verbose, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, normally :8090)")
	return cmd
}

func runServeStatus(ctx context.Context, configPath string, verbose bool, addr string) error {
	cfg, err := loadConfig(configPath, verbose)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.StatusServer.Addr = addr
	}

	cleanup, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := statusserver.New(cfg.StatusServer.Addr)
	logger.Info("status server listening on %s", cfg.StatusServer.Addr)

	if err := srv.ListenAndServe(ctx); err != nil {
		return trace.Wrap(err, "serving status endpoint")
	}
	return nil
}
