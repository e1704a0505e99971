package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/ledger-api/internal/config"
	"github.com/sangkips/ledger-api/internal/domain/entity"
	"github.com/sangkips/ledger-api/internal/domain/repository"
	"github.com/sangkips/ledger-api/internal/importer"
	infraRepo "github.com/sangkips/ledger-api/internal/infrastructure/repository"
	"github.com/sangkips/ledger-api/internal/logger"
	"github.com/sangkips/ledger-api/pkg/apperror"
	"go.uber.org/zap"
)

// CustomerResolver maps an imported customer name onto a customer of the
// tenant, creating it when nothing matches.
type CustomerResolver interface {
	Resolve(ctx context.Context, tenantID uuid.UUID, name string) (customer *entity.Customer, created bool, err error)
}

type exactNameResolver struct {
	customerRepo repository.CustomerRepository
}

// NewExactNameResolver matches names after whitespace collapsing and case
// folding only. "Al Noor Trading" and "Al-Noor Trading" stay two customers.
func NewExactNameResolver(customerRepo repository.CustomerRepository) CustomerResolver {
	return &exactNameResolver{customerRepo: customerRepo}
}

func (r *exactNameResolver) Resolve(ctx context.Context, tenantID uuid.UUID, name string) (*entity.Customer, bool, error) {
	return r.customerRepo.FindOrCreate(ctx, &entity.Customer{
		TenantID:       tenantID,
		Name:           name,
		NormalizedName: entity.NormalizeCustomerName(name),
	})
}

// ImportService runs ledger imports: preview of an uploaded file and apply
// of mapped rows against the tenant's ledger.
type ImportService struct {
	tenantRepo  repository.TenantRepository
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	txManager   repository.TxManager
	ledger      *LedgerService
	resolver    CustomerResolver
	cfg         config.ImportConfig
	now         func() time.Time
}

// NewImportService creates a new import service
func NewImportService(
	tenantRepo repository.TenantRepository,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	txManager repository.TxManager,
	ledger *LedgerService,
	cfg config.ImportConfig,
) *ImportService {
	return &ImportService{
		tenantRepo:  tenantRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		txManager:   txManager,
		ledger:      ledger,
		resolver:    NewExactNameResolver(customerRepo),
		cfg:         cfg,
		now:         time.Now,
	}
}

// WithResolver swaps the customer matching strategy.
func (s *ImportService) WithResolver(resolver CustomerResolver) *ImportService {
	s.resolver = resolver
	return s
}

// ApplyOptions controls one apply
type ApplyOptions struct {
	// SkipDuplicates counts rows whose invoice already exists as skipped.
	// When false such rows are reported as errors.
	SkipDuplicates bool
	// DryRun runs the whole batch and rolls everything back.
	DryRun bool
	// ImportDate dates invoices that carry no payment date. Defaults to today.
	ImportDate time.Time
	// RowNumbers optionally gives the source row of each submitted row, as
	// returned by a preview. Without it rows are numbered from 1.
	RowNumbers []int
}

// PreviewResult is a parsed sample plus a proposed column mapping
type PreviewResult struct {
	importer.Table
	SuggestedMapping importer.ColumnMapping `json:"suggestedMapping"`
}

// Preview parses an upload and returns at most maxRows sample rows. An
// unreadable file is reported in the result's Error field, not as an error.
func (s *ImportService) Preview(ctx context.Context, r io.Reader, filename string, maxRows int) (*PreviewResult, error) {
	if maxRows <= 0 || maxRows > s.cfg.PreviewRows {
		maxRows = s.cfg.PreviewRows
	}

	table := importer.Parse(r, importer.ParseOptions{
		Filename: filename,
		MaxRows:  maxRows,
		MaxBytes: s.cfg.MaxFileSize,
	})

	result := &PreviewResult{Table: *table, SuggestedMapping: importer.ColumnMapping{}}
	if table.Error != "" {
		logger.FromContext(ctx).Info("import preview failed",
			zap.String("filename", filename),
			zap.String("error", table.Error),
		)
		return result, nil
	}
	result.SuggestedMapping = importer.SuggestMapping(table.Headers)
	return result, nil
}

// ApplyFile re-parses the complete upload and applies every row. The
// preview cap never applies here.
func (s *ImportService) ApplyFile(ctx context.Context, r io.Reader, filename string, mapping importer.ColumnMapping, opts ApplyOptions) (*importer.ImportReport, error) {
	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	table := importer.Parse(r, importer.ParseOptions{
		Filename: filename,
		MaxBytes: s.cfg.MaxFileSize,
	})
	if table.Error != "" {
		return nil, apperror.NewUnprocessableError(table.Error)
	}

	var problems []apperror.FieldError
	for _, field := range importer.Fields {
		if idx, ok := mapping[field]; ok && idx >= len(table.Headers) {
			problems = append(problems, apperror.FieldError{
				Field:   string(field),
				Message: fmt.Sprintf("column %d does not exist; the file has %d columns", idx, len(table.Headers)),
			})
		}
	}
	if len(problems) > 0 {
		return nil, apperror.NewValidationError(problems)
	}

	opts.RowNumbers = table.RowNumbers
	return s.ApplyRows(ctx, mapping, table.Rows, opts)
}

// ApplyRows normalizes and applies raw rows. Only structural problems, such
// as a bad mapping or an oversized batch, are returned as errors; every row
// level failure ends up in the report.
func (s *ImportService) ApplyRows(ctx context.Context, mapping importer.ColumnMapping, rows [][]string, opts ApplyOptions) (*importer.ImportReport, error) {
	if err := mapping.Validate(); err != nil {
		return nil, err
	}
	if s.cfg.MaxApplyRows > 0 && len(rows) > s.cfg.MaxApplyRows {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("Too many rows: %d submitted, at most %d per import", len(rows), s.cfg.MaxApplyRows))
	}
	if opts.RowNumbers != nil && len(opts.RowNumbers) != len(rows) {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("rowNumbers has %d entries for %d rows", len(opts.RowNumbers), len(rows)))
	}

	tenant, err := s.currentTenant(ctx)
	if err != nil {
		return nil, err
	}

	normalizer := importer.NewNormalizer(tenant.Settings.DateFormat)
	report := importer.NewImportReport()
	report.Rows = len(rows)

	err = s.runBatch(ctx, opts, func(ctx context.Context) {
		for i, row := range rows {
			rowIndex := i + 1
			if opts.RowNumbers != nil {
				rowIndex = opts.RowNumbers[i]
			}
			record, err := normalizer.Normalize(row, mapping, rowIndex)
			if err != nil {
				report.AddError(rowIndex, err.Error())
				continue
			}
			s.applyRecord(ctx, tenant.ID, record, opts, report)
		}
	})
	if err != nil {
		return nil, err
	}

	s.logSummary(ctx, report, opts)
	return report, nil
}

// Apply reconciles already normalized records.
func (s *ImportService) Apply(ctx context.Context, records []*importer.ImportRecord, opts ApplyOptions) (*importer.ImportReport, error) {
	tenant, err := s.currentTenant(ctx)
	if err != nil {
		return nil, err
	}

	report := importer.NewImportReport()
	report.Rows = len(records)

	err = s.runBatch(ctx, opts, func(ctx context.Context) {
		for _, record := range records {
			s.applyRecord(ctx, tenant.ID, record, opts, report)
		}
	})
	if err != nil {
		return nil, err
	}

	s.logSummary(ctx, report, opts)
	return report, nil
}

var errDryRun = errors.New("dry run")

// runBatch runs fn directly, or for a dry run inside a transaction that is
// always rolled back. Rows still get their own savepoints within it.
func (s *ImportService) runBatch(ctx context.Context, opts ApplyOptions, fn func(ctx context.Context)) error {
	if !opts.DryRun {
		fn(ctx)
		return nil
	}
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		fn(ctx)
		return errDryRun
	})
	if errors.Is(err, errDryRun) {
		return nil
	}
	return err
}

func (s *ImportService) currentTenant(ctx context.Context) (*entity.Tenant, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperror.NewNotFoundError("Tenant")
	}
	return tenant, nil
}

func (s *ImportService) importDate(opts ApplyOptions) time.Time {
	d := opts.ImportDate
	if d.IsZero() {
		d = s.now()
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *ImportService) logSummary(ctx context.Context, report *importer.ImportReport, opts ApplyOptions) {
	logger.FromContext(ctx).Info("import applied",
		zap.Int("rows", report.Rows),
		zap.Int("sales_created", report.SalesCreated),
		zap.Int("customers_created", report.CustomersCreated),
		zap.Int("payments_created", report.PaymentsCreated),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", len(report.Errors)),
		zap.Bool("skip_duplicates", opts.SkipDuplicates),
		zap.Bool("dry_run", opts.DryRun),
	)
}
