// Package cmd contains the wiki-api CLI commands.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"wiki-api/pkg/config"
	"wiki-api/pkg/store"
)

var version = "dev"

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// app is the state shared by every command once flags are parsed.
type app struct {
	cfgFile  string
	verbose  bool
	storeURL string

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "wiki-api",
		Short: "REST API over a collection of wiki articles",
		Long: `wiki-api serves create/read/update/delete over the "articles" collection
of a document store.

Example usage:
  wiki-api serve                                  # MongoDB at mongodb://localhost:27017/WikiDB
  wiki-api serve --store-url sqlite://wiki.db     # local SQLite file
  wiki-api import ./content                       # load Markdown files
  wiki-api export ./backup --format toml          # dump articles as Markdown`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (YAML or TOML)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVar(&a.storeURL, "store-url", "", "document store connection string (overrides STORE_URL)")

	root.AddCommand(
		newServeCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) init() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.storeURL != "" {
		cfg.StoreURL = a.storeURL
	}
	a.cfg = cfg

	logger, err := newLogger(cfg, a.verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	a.logger = logger
	return nil
}

func newLogger(cfg *config.Config, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else if !cfg.IsProduction() {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return zcfg.Build()
}

// openStore connects to the configured store and wraps it with logging and metrics.
func (a *app) openStore(ctx context.Context) (store.Store, error) {
	backend, err := store.Backend(a.cfg.StoreURL)
	if err != nil {
		return nil, err
	}
	s, err := store.Open(ctx, a.cfg.StoreURL, store.Options{
		DynamoRegion:   a.cfg.DynamoRegion,
		DynamoEndpoint: a.cfg.DynamoEndpoint,
	})
	if err != nil {
		return nil, err
	}
	a.logger.Info("Connected to store", zap.String("backend", backend))
	return store.Instrument(s, backend, a.logger), nil
}
