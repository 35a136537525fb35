package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"invoicedesk/internal/config"
	"invoicedesk/internal/handler"
	"invoicedesk/internal/logger"
	"invoicedesk/internal/ocr"
	"invoicedesk/internal/parser/chain"
	"invoicedesk/internal/repository/postgres"
	"invoicedesk/internal/repository/redisstore"
	"invoicedesk/internal/router"
	"invoicedesk/internal/service"
	s3storage "invoicedesk/internal/storage/s3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	rdb, err := redisstore.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer rdb.Close()

	// Repositories and stores
	invoiceRepo := postgres.NewInvoiceRepo(db)
	draftStore := redisstore.NewDraftStore(rdb)
	otpStore := redisstore.NewOTPStore(rdb)

	images, err := s3storage.NewImageStore(&cfg.S3, log)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	recognizer := ocr.NewRecognizer(ocr.NewTesseractEngine(cfg.OCR), cfg.OCR, log)
	fieldParser, err := chain.Build(&cfg.Parser, log)
	if err != nil {
		return fmt.Errorf("failed to build field parser: %w", err)
	}

	// Services
	authSvc := service.NewAuthService(otpStore, cfg.JWT, cfg.Auth, log)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, images, &cfg.S3, log)
	exportSvc := service.NewExportService(invoiceRepo, log)
	draftSvc := service.NewDraftService(draftStore, invoiceRepo, images, recognizer, fieldParser, &cfg.S3, cfg.Draft, log)

	// Handlers
	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(authSvc),
		Invoice: handler.NewInvoiceHandler(invoiceSvc, exportSvc),
		Draft:   handler.NewDraftHandler(draftSvc),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"postgres": handler.PingFunc(db.PingContext),
			"redis": handler.PingFunc(func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}),
		}),
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router.Setup(authSvc, handlers, cfg.CORS, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
