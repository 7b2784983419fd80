package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joseph-ayodele/ensayos/internal/common"
	"github.com/joseph-ayodele/ensayos/internal/core"
	"github.com/joseph-ayodele/ensayos/internal/core/assay"
	"github.com/joseph-ayodele/ensayos/internal/core/async"
	"github.com/joseph-ayodele/ensayos/internal/core/ocr"
	"github.com/joseph-ayodele/ensayos/internal/core/source"
	"github.com/joseph-ayodele/ensayos/internal/export"
	repo "github.com/joseph-ayodele/ensayos/internal/repository"
	svc "github.com/joseph-ayodele/ensayos/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file (default $ENSAYOS_CONFIG or ensayos.toml)")
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := ocr.New(ocr.Config{
		Engine:      cfg.OCR.Engine,
		Tesseract:   cfg.OCR.Tesseract,
		Lang:        cfg.OCR.Lang,
		TessdataDir: cfg.OCR.TessdataDir,
		PSM:         cfg.OCR.PSM,
	}, logger)
	if err != nil {
		logger.Error("failed to create OCR engine", "error", err)
		os.Exit(1)
	}
	if c, ok := engine.(interface{ Close() error }); ok {
		defer c.Close()
	}

	processor := core.NewProcessor(logger, source.NewRouter(engine, logger), assay.NewExtractor(logger))

	opts := svc.Options{
		MaxUploadBytes:  cfg.Server.MaxUploadBytes,
		BulkConcurrency: cfg.Server.BulkConcurrency,
	}
	var informes *svc.InformeServer
	var queue *async.PersistQueue

	if cfg.PersistenceEnabled() {
		db, err := repo.Open(ctx, repo.ConfigFrom(cfg.Database), logger)
		if err != nil {
			logger.Error("failed to open database", "error", err, "driver", cfg.Database.Driver)
			os.Exit(1)
		}
		defer db.Close(logger)

		if err := db.HealthCheck(ctx, 5*time.Second, logger); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}

		informesRepo := repo.NewInformeRepository(db, logger)
		queue = async.NewPersistQueue(informesRepo, logger,
			async.WithWorkers(cfg.Queue.Workers),
			async.WithQueueSize(cfg.Queue.Size),
			async.WithTimeout(cfg.Queue.Timeout),
		)
		opts.Queue = queue
		informes = svc.NewInformeServer(informesRepo, export.NewService(informesRepo, logger), logger)
		logger.Info("persistence enabled", "driver", db.Dialect)
	} else {
		logger.Info("persistence disabled")
	}

	extract := svc.NewExtractServer(processor, opts, logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           svc.NewHandler(extract, informes, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("ensayos listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if cfg.Server.GRPCHealthAddr != "" {
		health := svc.NewHealthServer(logger)
		go func() {
			if err := health.Serve(ctx, cfg.Server.GRPCHealthAddr); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", "error", err)
		stop()
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if queue != nil {
		queue.Shutdown(shutdownCtx)
	}
}
