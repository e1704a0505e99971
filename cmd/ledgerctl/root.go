package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sangkips/ledger-api/internal/application/service"
	"github.com/sangkips/ledger-api/internal/config"
	"github.com/sangkips/ledger-api/internal/domain/entity"
	"github.com/sangkips/ledger-api/internal/infrastructure/database"
	"github.com/sangkips/ledger-api/internal/infrastructure/repository"
	"github.com/sangkips/ledger-api/internal/logger"
	"github.com/sangkips/ledger-api/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var version = "0.1.0"

// app holds what the subcommands share. The database is only opened by
// commands that need it.
type app struct {
	envFile string
	cfg     *config.Config
	log     *zap.Logger

	db      *gorm.DB
	tenants *service.TenantService
	imports *service.ImportService
	ledger  *service.LedgerService
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Import billing exports and inspect customer ledgers",
		Long: `ledgerctl imports legacy billing spreadsheets (CSV, XLSX, XLS) into the
customer ledger and reads statements back out.

Configuration comes from the same environment variables as the API server,
optionally loaded from an env file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Env file to read configuration from")

	root.AddCommand(
		newPreviewCmd(a),
		newImportCmd(a),
		newLedgerCmd(a),
		newVerifyCmd(a),
		newTokenCmd(a),
		newTenantCmd(a),
	)
	return root
}

func (a *app) init() error {
	a.cfg = config.LoadFile(a.envFile)
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		ServiceName: "ledgerctl",
		Environment: a.cfg.App.Env,
		Level:       a.cfg.Log.Level,
		Format:      "console",
		Output:      "stderr",
	})
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

// open connects, migrates and wires the services on first use.
func (a *app) open() error {
	if a.db != nil {
		return nil
	}

	db, err := database.Open(&a.cfg.Database)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	tenantRepo := repository.NewTenantRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	txManager := repository.NewTxManager(db)

	a.db = db
	a.tenants = service.NewTenantService(tenantRepo)
	a.ledger = service.NewLedgerService(repository.NewLedgerRepository(db), customerRepo, invoiceRepo, paymentRepo, txManager)
	a.imports = service.NewImportService(tenantRepo, customerRepo, invoiceRepo, paymentRepo, txManager, a.ledger, a.cfg.Import)
	return nil
}

func (a *app) close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		a.db = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// findTenant accepts a tenant ID or slug.
func (a *app) findTenant(ctx context.Context, ref string) (*entity.Tenant, error) {
	if ref == "" {
		return nil, fmt.Errorf("--tenant is required")
	}
	if err := a.open(); err != nil {
		return nil, err
	}
	if id, err := utils.ParseUUID(ref); err == nil {
		return a.tenants.GetTenant(ctx, id)
	}
	return a.tenants.GetTenantBySlug(ctx, ref)
}

// tenantContext returns ctx scoped to the referenced tenant.
func (a *app) tenantContext(ctx context.Context, ref string) (context.Context, *entity.Tenant, error) {
	tenant, err := a.findTenant(ctx, ref)
	if err != nil {
		return nil, nil, fmt.Errorf("tenant %q: %w", ref, err)
	}
	ctx = repository.WithTenant(ctx, tenant.ID)
	ctx = logger.WithContext(ctx, a.log.With(zap.String("tenant_id", tenant.ID.String())))
	return ctx, tenant, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
