// main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ViniZap4/moodlog-server/config"
	"github.com/ViniZap4/moodlog-server/kv"
	"github.com/ViniZap4/moodlog-server/logging"
	"github.com/ViniZap4/moodlog-server/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "moodlog",
		Short:         "Record moods and review their history",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default $MOODLOG_CONFIG)")

	open := func(cmd *cobra.Command, migrate bool) (*runtime, error) {
		return openRuntime(cmd, configPath, migrate)
	}

	root.AddCommand(
		newServeCmd(open),
		newRecordCmd(open),
		newHistoryCmd(open),
		newStatsCmd(open),
		newClearCmd(open),
		newMigrateCmd(open),
	)
	return root
}

type opener func(cmd *cobra.Command, migrate bool) (*runtime, error)

// runtime bundles what every command needs.
type runtime struct {
	cfg     config.Config
	log     zerolog.Logger
	backend kv.Backend
	store   *store.Store
}

func openRuntime(cmd *cobra.Command, configPath string, migrate bool) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	backend, err := kv.Open(ctx, kv.Options{
		Driver:      cfg.Backend,
		DataDir:     cfg.DataDir,
		SQLitePath:  cfg.SQLitePath,
		RedisAddr:   cfg.RedisAddr,
		DatabaseURL: cfg.DatabaseURL,
		Migrate:     migrate,
		Logger:      log,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	log.Debug().Str("backend", cfg.Backend).Msg("storage ready")

	return &runtime{
		cfg:     cfg,
		log:     log,
		backend: backend,
		store:   store.New(backend, store.WithKey(cfg.Key), store.WithLogger(log)),
	}, nil
}

func (rt *runtime) Close() {
	if err := rt.backend.Close(); err != nil {
		rt.log.Warn().Err(err).Msg("closing backend")
	}
}
