package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/ledger-api/internal/application/service"
	"github.com/sangkips/ledger-api/internal/config"
	domainRepo "github.com/sangkips/ledger-api/internal/domain/repository"
	"github.com/sangkips/ledger-api/internal/infrastructure/database"
	"github.com/sangkips/ledger-api/internal/infrastructure/repository"
	"github.com/sangkips/ledger-api/internal/logger"
	"github.com/sangkips/ledger-api/internal/presentation/http/handler"
	"github.com/sangkips/ledger-api/internal/presentation/http/middleware"
	"github.com/sangkips/ledger-api/internal/presentation/http/routes"
	"github.com/sangkips/ledger-api/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Env,
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
	})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.App.Name, cfg.JWT.ExpiryHours)

	// Repositories
	tenantRepo := repository.NewTenantRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	txManager := repository.NewTxManager(db)

	// Services
	ledgerService := service.NewLedgerService(ledgerRepo, customerRepo, invoiceRepo, paymentRepo, txManager)
	importService := service.NewImportService(tenantRepo, customerRepo, invoiceRepo, paymentRepo, txManager, ledgerService, cfg.Import)
	customerService := service.NewCustomerService(customerRepo)
	tenantService := service.NewTenantService(tenantRepo)

	handlers := &routes.Handlers{
		Import:   handler.NewImportHandler(importService, cfg.Import),
		Customer: handler.NewCustomerHandler(customerService, ledgerService),
		Ledger:   handler.NewLedgerHandler(ledgerService),
		Tenant:   handler.NewTenantHandler(tenantService),
	}

	rateLimiter := middleware.NewTenantRateLimiter(middleware.RateLimiterConfigFrom(cfg.RateLimit))
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Logger:          log,
		TenantRepo:      tenantRepo,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go purgeIdempotencyKeys(ctx, idempotencyRepo, log)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, log *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				log.Warn("purge expired idempotency keys", zap.Error(err))
			}
		}
	}
}
