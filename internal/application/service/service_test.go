package service_test

import (
	"context"
	"testing"

	"github.com/sangkips/ledger-api/internal/application/service"
	"github.com/sangkips/ledger-api/internal/config"
	"github.com/sangkips/ledger-api/internal/domain/entity"
	domainRepo "github.com/sangkips/ledger-api/internal/domain/repository"
	"github.com/sangkips/ledger-api/internal/importer"
	"github.com/sangkips/ledger-api/internal/infrastructure/repository"
	"github.com/sangkips/ledger-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixture wires the services over a fresh in-memory store with one tenant.
type fixture struct {
	db       *gorm.DB
	ctx      context.Context
	tenant   *entity.Tenant
	imports  *service.ImportService
	ledger   *service.LedgerService
	tenants  *service.TenantService
	customer domainRepo.CustomerRepository
	invoices domainRepo.InvoiceRepository
}

var testImportConfig = config.ImportConfig{
	PreviewRows:    500,
	MaxFileSize:    1 << 20,
	MaxApplyRows:   100,
	MaxErrorsShown: 100,
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	ctx, tenant := testutil.NewTenant(t, db, "Acme Holdings")

	tenantRepo := repository.NewTenantRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	txManager := repository.NewTxManager(db)

	ledger := service.NewLedgerService(ledgerRepo, customerRepo, invoiceRepo, paymentRepo, txManager)
	imports := service.NewImportService(tenantRepo, customerRepo, invoiceRepo, paymentRepo, txManager, ledger, testImportConfig)

	return &fixture{
		db:       db,
		ctx:      ctx,
		tenant:   tenant,
		imports:  imports,
		ledger:   ledger,
		tenants:  service.NewTenantService(tenantRepo),
		customer: customerRepo,
		invoices: invoiceRepo,
	}
}

// mapping used by the legacy export in most tests:
// invoice, customer, type, date, net, vat, sales, discount
var exportMapping = importer.ColumnMapping{
	importer.FieldInvoiceNo:    0,
	importer.FieldCustomerName: 1,
	importer.FieldPaymentType:  2,
	importer.FieldPaymentDate:  3,
	importer.FieldNetSales:     4,
	importer.FieldVAT:          5,
	importer.FieldSales:        6,
	importer.FieldDiscount:     7,
}

func row(invoiceNo, customer, date, net, vat string) []string {
	return []string{invoiceNo, customer, "Cash", date, net, vat, "", ""}
}

func (f *fixture) mustCustomer(t *testing.T, name string) *entity.Customer {
	t.Helper()
	c, err := f.customer.GetByNormalizedName(f.ctx, entity.NormalizeCustomerName(name))
	require.NoError(t, err)
	require.NotNil(t, c, "customer %q", name)
	return c
}
