package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/ledger-api/internal/domain/entity"
	"github.com/sangkips/ledger-api/internal/domain/enum"
	"github.com/sangkips/ledger-api/internal/domain/repository"
	"github.com/sangkips/ledger-api/internal/importer"
	"github.com/sangkips/ledger-api/internal/logger"
	"go.uber.org/zap"
)

var errInvoiceExists = errors.New("invoice already exists")

// requireKeys trims the record's invoice number and customer name in place
// and rejects the record when either is blank. Rows from ApplyRows are already
// checked by the normalizer; records handed to Apply are not.
func requireKeys(rec *importer.ImportRecord) error {
	rec.InvoiceNo = strings.TrimSpace(rec.InvoiceNo)
	rec.CustomerName = strings.TrimSpace(rec.CustomerName)

	var missing []string
	if rec.InvoiceNo == "" {
		missing = append(missing, string(importer.FieldInvoiceNo))
	}
	if rec.CustomerName == "" {
		missing = append(missing, string(importer.FieldCustomerName))
	}
	switch len(missing) {
	case 1:
		return fmt.Errorf("%s is required", missing[0])
	case 2:
		return fmt.Errorf("%s and %s are required", missing[0], missing[1])
	}
	return nil
}

// rowOutcome is what a committed row adds to the report.
type rowOutcome struct {
	customerCreated bool
	saleCreated     bool
	paymentCreated  bool
}

// applyRecord reconciles one record in its own transaction: duplicate check,
// customer resolution, the invoice debit and, when the row carries a payment
// date, the matching credit. Nothing is counted unless the row commits.
func (s *ImportService) applyRecord(ctx context.Context, tenantID uuid.UUID, rec *importer.ImportRecord, opts ApplyOptions, report *importer.ImportReport) {
	if err := requireKeys(rec); err != nil {
		report.AddError(rec.RowIndex, err.Error())
		return
	}

	log := logger.FromContext(ctx).With(
		zap.Int("row", rec.RowIndex),
		zap.String("invoice_no", rec.InvoiceNo),
	)

	var outcome rowOutcome
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		outcome = rowOutcome{}
		return s.reconcile(ctx, tenantID, rec, opts, &outcome)
	})

	switch {
	case errors.Is(err, errInvoiceExists):
		if opts.SkipDuplicates {
			report.Skipped++
			log.Debug("import row skipped: invoice exists")
			return
		}
		report.AddError(rec.RowIndex, fmt.Sprintf("invoice %s already exists", rec.InvoiceNo))
		return
	case err != nil:
		report.AddError(rec.RowIndex, err.Error())
		log.Debug("import row failed", zap.Error(err))
		return
	}

	if outcome.customerCreated {
		report.CustomersCreated++
	}
	if outcome.saleCreated {
		report.SalesCreated++
	}
	if outcome.paymentCreated {
		report.PaymentsCreated++
	}
	report.AddWarnings(rec.RowIndex, rec.Warnings)
}

func (s *ImportService) reconcile(ctx context.Context, tenantID uuid.UUID, rec *importer.ImportRecord, opts ApplyOptions, outcome *rowOutcome) error {
	existing, err := s.invoiceRepo.GetByInvoiceNo(ctx, rec.InvoiceNo)
	if err != nil {
		return fmt.Errorf("duplicate lookup: %w", err)
	}
	if existing != nil {
		return errInvoiceExists
	}

	gross := rec.GrossAmount()
	if !gross.IsPositive() {
		msg := fmt.Sprintf("gross amount %s must be positive", gross.StringFixed(2))
		if len(rec.Warnings) > 0 {
			msg += " (" + strings.Join(rec.Warnings, "; ") + ")"
		}
		return errors.New(msg)
	}

	customer, created, err := s.resolver.Resolve(ctx, tenantID, rec.CustomerName)
	if err != nil {
		return fmt.Errorf("resolve customer %q: %w", rec.CustomerName, err)
	}

	invoiceDate := s.importDate(opts)
	if rec.PaymentDate != nil {
		invoiceDate = *rec.PaymentDate
	}

	invoice := &entity.Invoice{
		TenantID:    tenantID,
		CustomerID:  customer.ID,
		InvoiceNo:   rec.InvoiceNo,
		InvoiceDate: invoiceDate,
		PaymentType: rec.PaymentType,
		NetSales:    rec.NetSales,
		VAT:         rec.VAT,
		Sales:       rec.Sales,
		Discount:    rec.Discount,
		Cost:        rec.Cost,
		Total:       gross,
		Status:      enum.InvoiceStatusOutstanding,
		Source:      entity.InvoiceSourceImport,
	}
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		// Lost a race with a concurrent import of the same invoice.
		if errors.Is(err, repository.ErrDuplicate) {
			return errInvoiceExists
		}
		return fmt.Errorf("create invoice: %w", err)
	}

	if err := s.ledger.Post(ctx, &entity.LedgerEntry{
		TenantID:   tenantID,
		CustomerID: customer.ID,
		EntryDate:  invoiceDate,
		Type:       enum.LedgerEntryInvoice,
		Reference:  rec.InvoiceNo,
		Debit:      gross,
		SourceID:   invoice.ID,
	}); err != nil {
		return err
	}
	outcome.customerCreated = created
	outcome.saleCreated = true

	if rec.PaymentDate == nil {
		return nil
	}

	payment := &entity.Payment{
		TenantID:    tenantID,
		CustomerID:  customer.ID,
		InvoiceID:   &invoice.ID,
		Reference:   rec.InvoiceNo,
		Amount:      gross,
		PaymentDate: *rec.PaymentDate,
		Method:      rec.PaymentType,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	if err := s.ledger.Post(ctx, &entity.LedgerEntry{
		TenantID:   tenantID,
		CustomerID: customer.ID,
		EntryDate:  *rec.PaymentDate,
		Type:       enum.LedgerEntryPayment,
		Reference:  rec.InvoiceNo,
		Credit:     gross,
		SourceID:   payment.ID,
	}); err != nil {
		return err
	}
	if err := s.invoiceRepo.UpdateStatus(ctx, invoice.ID, enum.InvoiceStatusPaid); err != nil {
		return fmt.Errorf("mark invoice paid: %w", err)
	}
	outcome.paymentCreated = true
	return nil
}
