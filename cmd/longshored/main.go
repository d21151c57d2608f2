// Command longshored serves a coastline evolution model over gRPC. It
// binds the model registry, instantiates the requested model, and hands it
// to the serving layer until the process is signalled.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/coastalsim/longshore/bmi"
	"github.com/coastalsim/longshore/internal/cem"
	"github.com/coastalsim/longshore/internal/env"
	"github.com/coastalsim/longshore/internal/envvar"
	"github.com/coastalsim/longshore/internal/forcing"
	"github.com/coastalsim/longshore/internal/logger"
	"github.com/coastalsim/longshore/internal/xfs"
	"github.com/coastalsim/longshore/server"
)

type options struct {
	listen        string
	metricsListen string
	model         string
	forcingPath   string
}

func main() {
	var (
		flagListen        = flag.String("listen", envOr(envvar.LongshoreListen, server.DefaultListen), "gRPC listen address")
		flagMetricsListen = flag.String("metrics-listen", os.Getenv(envvar.LongshoreMetricsListen), "Prometheus metrics listen address (empty disables)")
		flagModel         = flag.String("model", envOr(envvar.LongshoreModel, cem.ModelName), "Name of the model to serve")
		flagForcing       = flag.String("forcing", os.Getenv(envvar.LongshoreForcing), "Path to a wave forcing file to watch (optional)")
		flagLogLevel      = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		flagLogFile       = flag.String("log-file", envOr(envvar.LongshoreLogFile, "logs/longshored.log"), "Path to the rotated log file")
	)
	flag.Parse()

	environment := env.FromEnv()

	logFile := xfs.ExpandTilde(*flagLogFile)
	if err := xfs.EnsureParentDir(logFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	slog.SetDefault(
		logger.New(environment,
			logger.WithLevel(logger.ParseLevel(*flagLogLevel)),
			logger.WithLogToFile(true),
			logger.WithLogFile(logFile),
		),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, options{
		listen:        *flagListen,
		metricsListen: *flagMetricsListen,
		model:         *flagModel,
		forcingPath:   xfs.ExpandTilde(*flagForcing),
	})
	if err != nil {
		slog.Error("Daemon failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	registry := bmi.NewRegistry()
	if err := cem.Register(registry); err != nil {
		return fmt.Errorf("failed to register models: %w", err)
	}

	factory, ok := registry.Get(opts.model)
	if !ok {
		return fmt.Errorf("unknown model %q, registered models: %v", opts.model, registry.Names())
	}
	model := factory()

	// Smoke check that the binding produced a usable model.
	name := model.ComponentName()
	if name == "" || len(name) > bmi.MaxComponentName {
		return fmt.Errorf("model %q reports an unusable component name", opts.model)
	}
	slog.Info("Serving model", "model", opts.model, "component", name)

	metrics := server.NewMetrics()
	svc, err := server.NewService(model, server.WithMetrics(metrics))
	if err != nil {
		return err
	}

	if opts.forcingPath != "" {
		watcher, err := forcing.NewWatcher(opts.forcingPath, func(f *forcing.Forcing, err error) {
			if err != nil {
				slog.Error("Failed to reload forcing", "error", err)
				return
			}
			applyForcing(svc, f)
		})
		if err != nil {
			return err
		}
		slog.Info("Watching forcing file", "path", opts.forcingPath)
		applyForcing(svc, watcher.Snapshot())
	}

	srv := server.New(svc, server.Config{
		Listen:        opts.listen,
		MetricsListen: opts.metricsListen,
		Metrics:       metrics,
		Logger:        slog.Default(),
	})

	return srv.Serve(ctx)
}

func applyForcing(svc *server.Service, f *forcing.Forcing) {
	cells := svc.CellCount()
	if f.BedloadRate != nil && cells == 0 {
		slog.Warn("Bedload forcing is ignored until the model is initialized")
	}
	if err := svc.ApplyForcing(f.Values(cells)); err != nil {
		slog.Error("Failed to apply forcing", "error", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
