// Package cli wires sfdecode's subcommands together with
// github.com/spf13/cobra, replacing the teacher's hand-rolled flag +
// switch dispatcher (internal/cli/cli.go in df2redis) with the same
// one-verb-per-operation shape expressed idiomatically.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gravitational/trace"
	"github.com/spf13/cobra"

	"sfdecode/internal/config"
	"sfdecode/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// Execute builds the root command, runs it against args, and returns
// the process exit code. Per-journal decode failures never change the
// exit code (spec.md §6); only a setup or infrastructure failure — bad
// config, a source or sink that never opened, a sink write that
// failed — does.
func Execute(args []string) int {
	ctx, cancel := notifyContext()
	defer cancel()

	root := newRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, trace.UserMessage(err))
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var configPath string
	var verbose bool

	root := &cobra.Command{
		Use:           "sfdecode",
		Short:         "Decode Splunk frozen bucket journals into newline-delimited JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	root.AddCommand(
		newDecodeCmd(&configPath, &verbose),
		newServeStatusCmd(&configPath, &verbose),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the sfdecode version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "sfdecode %s\n", version)
			return nil
		},
	}
}

// loadConfig reads configPath (if set) and layers the CLI's own flags
// on top, mirroring how spec.md §6 describes CLI flags overriding the
// equivalent config keys.
func loadConfig(configPath string, verbose bool) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, trace.Wrap(err, "loading configuration")
	}
	if verbose {
		cfg.Log.Verbose = true
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// setupLogger initializes the global logger from cfg and returns a
// cleanup func the caller should defer.
func setupLogger(cfg *config.Config) (func(), error) {
	level := logger.INFO
	if cfg.Log.Verbose {
		level = logger.DEBUG
	}
	if err := logger.Init(cfg.Log.Dir, level, "sfdecode"); err != nil {
		return nil, trace.Wrap(err, "initializing logger")
	}
	return func() { _ = logger.Close() }, nil
}

// notifyContext returns a context canceled on SIGINT/SIGTERM. The status
// server shuts down on cancellation. A decode run sees it only through
// the rate limiter's wait and the object store's Open (LocalStore.Open
// ignores it); a journal already being decoded runs to its end.
func notifyContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
