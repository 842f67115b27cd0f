package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/zip-dispatch/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/zip-dispatch/internal/adapter/kafka"
	"github.com/couchcryptid/zip-dispatch/internal/config"
	"github.com/couchcryptid/zip-dispatch/internal/domain"
	"github.com/couchcryptid/zip-dispatch/internal/lookup"
	"github.com/couchcryptid/zip-dispatch/internal/observability"
	"github.com/couchcryptid/zip-dispatch/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	sites, err := config.LoadSiteTable(cfg.SitesPath)
	if err != nil {
		logger.Error("failed to load site table", "error", err)
		os.Exit(1)
	}

	svc := lookup.NewService(cfg.LookupCacheSize, sites, logger, metrics)

	if cfg.SchemePath != "" {
		if err := installFromFile(svc, cfg.SchemePath); err != nil {
			logger.Error("failed to install startup scheme", "error", err, "path", cfg.SchemePath)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
		loader httpadapter.SchemeLoader = svc
	)
	ready := observability.AllReady{svc}
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		loaders := pipeline.Loaders{svc, writer}
		loader = loaders

		p := pipeline.New(reader, pipeline.NewTransformer(logger), loaders, logger, metrics, cfg.BatchSize)
		if cfg.SchemePath == "" {
			// no startup scheme: wait until the first upload is installed and published
			ready = append(ready, p)
		}
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		logger.Info("kafka disabled, serving startup scheme only")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, svc, loader, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func installFromFile(svc *lookup.Service, path string) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	scheme, err := domain.CompileScheme(path, string(text))
	if err != nil {
		return err
	}
	return svc.Install(scheme)
}
