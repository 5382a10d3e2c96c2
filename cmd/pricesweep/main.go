package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/meenmo/bondpricer/config"
	"github.com/meenmo/bondpricer/export"
	"github.com/meenmo/bondpricer/logger"
	"github.com/meenmo/bondpricer/sweep"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pricesweep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration path (built-in grid if omitted)")
	envPath := fs.String("env", ".env", "dotenv file loaded before the configuration")
	parquetPath := fs.String("parquet", "", "write the sweep to this Parquet file (overrides config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log := logger.GetLogger()
	log.SetOutput(stderr)

	if *envPath != "" {
		if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warn("Error loading .env file")
		}
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		return 1
	}
	if *parquetPath != "" {
		cfg.Export.Parquet.Enabled = true
		cfg.Export.Parquet.Path = *parquetPath
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		return 1
	}
	defer log.Close()
	if cfg.Logging.Output == "" || cfg.Logging.Output == "stderr" {
		log.SetOutput(stderr)
	}

	log.WithFields(logger.Fields{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	}).Info("starting pricesweep")

	grid, err := sweep.GridFromConfig(cfg.Sweep)
	if err != nil {
		log.WithError(err).Error("invalid sweep grid")
		return 1
	}

	report, err := sweep.Run(ctx, grid, sweep.Options{Workers: cfg.Sweep.Workers, Logger: log})
	if err != nil {
		log.WithError(err).Error("sweep failed")
		return 1
	}

	if err := sweep.Write(stdout, report.Points); err != nil {
		log.WithError(err).Error("failed to write report")
		return 1
	}

	sinks, err := openSinks(ctx, cfg.Export)
	if err != nil {
		log.WithError(err).Error("failed to open export sinks")
		return 1
	}

	code := 0
	for _, sink := range sinks {
		if err := sink.Write(ctx, report); err != nil {
			log.WithError(err).Error("export failed")
			code = 1
		}
		if err := sink.Close(); err != nil {
			log.WithError(err).Error("closing export sink failed")
			code = 1
		}
	}
	return code
}

func openSinks(ctx context.Context, cfg config.ExportConfig) ([]export.Sink, error) {
	var sinks []export.Sink
	closeAll := func() {
		for _, s := range sinks {
			_ = s.Close()
		}
	}

	if cfg.Parquet.Enabled {
		s, err := export.NewParquetSink(cfg.Parquet.Path, cfg.Parquet.Compression)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if cfg.Postgres.Enabled {
		s, err := export.NewPostgresSink(ctx, cfg.Postgres.DSN, cfg.Postgres.Table)
		if err != nil {
			closeAll()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}
