// Package main implements the kanban CLI: a terminal board, a local HTTP
// bridge, and one-shot commands for scripting the board.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jask/kanban/internal/board"
	"github.com/jask/kanban/internal/config"
	"github.com/jask/kanban/internal/metrics"
	"github.com/jask/kanban/internal/storage"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// flags shared by every subcommand; empty values leave config untouched.
type rootFlags struct {
	backend  string
	key      string
	logLevel string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:   "kanban",
		Short: "Task board for the terminal",
		Long: `kanban keeps a column/task board in local storage.

Run without a subcommand to open the board in the terminal. The board is
saved after every change to the configured backend (file, sqlite, redis
or memory).`,
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, f)
		},
	}
	root.PersistentFlags().StringVar(&f.backend, "backend", "", "storage backend (file, sqlite, redis, memory)")
	root.PersistentFlags().StringVar(&f.key, "key", "", "storage key holding the board")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newTUICmd(f),
		newServeCmd(f),
		newExportCmd(f),
		newImportCmd(f),
		newResetCmd(f),
		newColumnCmd(f),
		newTaskCmd(f),
		newConfigCmd(f),
	)
	return root
}

// env is everything a command needs to act on the board.
type env struct {
	cfg       config.Config
	log       *log.Logger
	backend   storage.Storage
	store     *board.Store
	persister *board.Persister
	metrics   *metrics.Collector
}

func loadConfig(f *rootFlags) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if f.backend != "" {
		cfg.Storage.Backend = f.backend
	}
	if f.key != "" {
		cfg.Storage.Key = f.key
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig, out io.Writer) *log.Logger {
	logger := log.New()
	logger.SetOutput(out)
	if lvl, err := log.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.WithField("level", cfg.Level).Warn("unknown log level, using info")
	}
	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// openEnv loads config, opens storage and loads the board with a persister
// attached. logOut receives log output.
func openEnv(ctx context.Context, f *rootFlags, logOut io.Writer) (*env, error) {
	cfg, err := loadConfig(f)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.Log, logOut)
	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	collector := metrics.New()
	store, persister, err := board.Open(ctx, backend,
		board.WithKey(cfg.Storage.Key),
		board.WithLogger(logger),
		board.WithPersistObserver(collector.ObservePersist),
	)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("load board: %w", err)
	}
	logger.WithFields(log.Fields{
		"backend": cfg.Storage.Backend,
		"key":     cfg.Storage.Key,
		"tasks":   store.TaskCount(),
	}).Debug("board loaded")
	return &env{
		cfg:       cfg,
		log:       logger,
		backend:   backend,
		store:     store,
		persister: persister,
		metrics:   collector,
	}, nil
}

// saved reports the outcome of the write triggered by the last mutation.
func (e *env) saved() error {
	if err := e.persister.Err(); err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	return nil
}

func (e *env) Close() error {
	e.persister.Close()
	return e.backend.Close()
}

// withEnv runs fn against an opened env and closes it afterwards.
func withEnv(cmd *cobra.Command, f *rootFlags, fn func(e *env) error) error {
	e, err := openEnv(cmd.Context(), f, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := e.Close(); cerr != nil {
			e.log.WithError(cerr).Warn("close storage")
		}
	}()
	return fn(e)
}

// tuiLogFile keeps log output off the terminal while the board is drawn.
func tuiLogFile(cfg config.Config) io.Writer {
	dir := cfg.Storage.Dir
	if dir == "" {
		return io.Discard
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return io.Discard
	}
	fh, err := os.OpenFile(filepath.Join(dir, "kanban.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return io.Discard
	}
	return fh
}
