// Package cmd holds the nightlife-navigator command line: the HTTP service,
// the one-shot venue sync and operator helpers.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"nightlife-navigator/pkg/config"
	"nightlife-navigator/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	logLevel   string
	syncConfig string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "nightlife-navigator",
		Short:         "Nightlife Navigator backend: venue sync job and HTTP service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.syncConfig, "sync-config", "", "YAML overlay for sync settings (overrides SYNC_CONFIG_FILE)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newSyncCmd(opts))
	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newPlacesCmd(opts))

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// load reads configuration, applies flag overrides, validates, and builds the
// logger. Logs go to stderr so command output on stdout stays clean.
func (o *rootOptions) load() (*config.Config, *logging.Logger, error) {
	cfg := config.Load()
	if o.syncConfig != "" {
		if err := cfg.ApplySyncFile(o.syncConfig); err != nil {
			return nil, nil, err
		}
		cfg.SyncConfigFile = o.syncConfig
	}
	if o.logLevel != "" {
		cfg.LogLevel = strings.ToLower(o.logLevel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log := logging.NewLogger(logging.LogConfig{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		Output: os.Stderr,
	})
	return cfg, log, nil
}
