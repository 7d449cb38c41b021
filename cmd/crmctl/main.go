// Command crmctl runs maintenance jobs against the CRM database: the
// auto-assignment sweep, bulk rescoring and schema migration.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"propertycrm/internal/app"
	"propertycrm/internal/config"
	"propertycrm/internal/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg     *config.Config
	log     *zap.Logger
	verbose bool
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "crmctl",
	Short:         "Maintenance jobs for the property CRM",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		log = logger.New(level, cfg.LogFormat)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Abort the job after this long")

	rootCmd.AddCommand(autoAssignCmd)
	rootCmd.AddCommand(rescoreCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// jobContext is cancelled on SIGINT/SIGTERM or when --timeout elapses.
func jobContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// openApp builds the services without Redis or the content generator; no
// job here needs them.
func openApp(ctx context.Context, migrate bool) (*app.App, error) {
	db, err := app.OpenDB(ctx, cfg, log, migrate)
	if err != nil {
		return nil, err
	}
	return app.Build(cfg, log, db, nil, nil), nil
}
