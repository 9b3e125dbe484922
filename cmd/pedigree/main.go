// Command pedigree manages a canine pedigree registry and prints pedigree
// charts, inbreeding coefficients and reports as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"pedigreecore/internal/archive"
	"pedigreecore/internal/blob"
	"pedigreecore/internal/config"
	"pedigreecore/internal/core"
	"pedigreecore/internal/observability"
)

var exitFunc = os.Exit

func main() {
	exitFunc(cli(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// app carries per-invocation state shared by every subcommand.
type app struct {
	configPath string
	trace      bool

	stdin          io.Reader
	stdout, stderr io.Writer

	cfg        config.Config
	logger     *slog.Logger
	registry   *prometheus.Registry
	svc        *core.Service
	closeStore func() error
}

func cli(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(context.Background())
	if cerr := a.shutdown(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "pedigree",
		Short:         "Canine pedigree registry and inbreeding calculator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	root.PersistentFlags().BoolVar(&a.trace, "trace", false, "write operation spans as JSON lines to stderr")

	root.AddCommand(
		a.addCommand(),
		a.updateCommand(),
		a.validateCommand(),
		a.getCommand(),
		a.listCommand(),
		a.searchCommand(),
		a.deleteCommand(),
		a.treeCommand(),
		a.pedigreeCommand(),
		a.coiCommand(),
		a.reportCommand(),
		a.batchCommand(),
		a.relativesCommand(),
		a.statsCommand(),
		a.archiveCommand(),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(a.stderr, cfg.Log)

	store, closeStore, err := core.OpenPersistentStore(ctx, core.StorageConfig{
		Driver:      core.StorageDriver(cfg.Storage.Driver),
		SQLitePath:  cfg.Storage.SQLitePath,
		PostgresDSN: cfg.Storage.PostgresDSN,
		BadgerPath:  cfg.Storage.BadgerPath,
		Logger:      a.logger.With("component", "badger"),
	}, core.NewDefaultRulesEngine())
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	a.closeStore = closeStore

	objects, err := blob.Open(ctx, blob.Config{
		Driver: blob.Driver(cfg.Archive.Driver),
		FSRoot: cfg.Archive.FSRoot,
		S3: blob.S3Config{
			Bucket:          cfg.Archive.S3.Bucket,
			Region:          cfg.Archive.S3.Region,
			Endpoint:        cfg.Archive.S3.Endpoint,
			PathStyle:       cfg.Archive.S3.PathStyle,
			AccessKeyID:     cfg.Archive.S3.AccessKeyID,
			SecretAccessKey: cfg.Archive.S3.SecretAccessKey,
			SessionToken:    cfg.Archive.S3.SessionToken,
		},
	})
	if err != nil {
		return fmt.Errorf("open %s archive: %w", cfg.Archive.Driver, err)
	}

	a.registry = prometheus.NewRegistry()
	opts := []core.ServiceOption{
		core.WithLogger(a.logger),
		core.WithMetricsRecorder(observability.NewRecorder(a.registry)),
		core.WithArchive(archive.New(objects)),
		core.WithGenerationCeiling(cfg.Pedigree.MaxGenerations),
		core.WithDefaultGenerations(cfg.Pedigree.DefaultGenerations, cfg.Pedigree.COIGenerations),
		core.WithBatchLimit(cfg.Batch.Concurrency),
	}
	if a.trace {
		opts = append(opts, core.WithTracer(core.NewJSONTracer(a.stderr)))
	}
	a.svc = core.NewService(store, opts...)
	a.logger.Debug("pedigree ready", "storage", cfg.Storage.Driver, "archive", cfg.Archive.Driver)
	return nil
}

func (a *app) shutdown() error {
	var errs []error
	if a.registry != nil && a.cfg.Metrics.Textfile != "" {
		if err := observability.WriteTextfile(a.cfg.Metrics.Textfile, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if a.closeStore != nil {
		if err := a.closeStore(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}

func newLogger(w io.Writer, cfg config.Log) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
