package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/ledger-api/internal/domain/entity"
	"github.com/sangkips/ledger-api/internal/domain/enum"
	"github.com/sangkips/ledger-api/internal/domain/repository"
	infraRepo "github.com/sangkips/ledger-api/internal/infrastructure/repository"
	"github.com/sangkips/ledger-api/internal/logger"
	"github.com/sangkips/ledger-api/pkg/apperror"
	"github.com/sangkips/ledger-api/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService owns postings to customer ledgers and the balance they imply
type LedgerService struct {
	ledgerRepo   repository.LedgerRepository
	customerRepo repository.CustomerRepository
	invoiceRepo  repository.InvoiceRepository
	paymentRepo  repository.PaymentRepository
	txManager    repository.TxManager
	now          func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	ledgerRepo repository.LedgerRepository,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	txManager repository.TxManager,
) *LedgerService {
	return &LedgerService{
		ledgerRepo:   ledgerRepo,
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
		txManager:    txManager,
		now:          time.Now,
	}
}

// Post appends entry and moves the customer's cached balance by its delta.
// Callers run it inside a transaction so both writes land together.
func (s *LedgerService) Post(ctx context.Context, entry *entity.LedgerEntry) error {
	if err := entry.CheckAmounts(); err != nil {
		return err
	}
	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("post %s entry %s: %w", entry.Type, entry.Reference, err)
	}
	if err := s.customerRepo.AdjustBalance(ctx, entry.CustomerID, entry.Delta()); err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	return nil
}

// DateRange bounds a ledger view; both ends are inclusive and optional.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

func (r *DateRange) before(d time.Time) bool {
	return r != nil && r.From != nil && d.Before(*r.From)
}

func (r *DateRange) after(d time.Time) bool {
	return r != nil && r.To != nil && d.After(*r.To)
}

// LedgerLine is a ledger entry annotated with the running balance
type LedgerLine struct {
	ID        uint64               `json:"id"`
	Date      time.Time            `json:"date"`
	Type      enum.LedgerEntryType `json:"type"`
	Reference string               `json:"reference"`
	Debit     decimal.Decimal      `json:"debit"`
	Credit    decimal.Decimal      `json:"credit"`
	Balance   decimal.Decimal      `json:"balance"`
}

// CustomerLedger is the statement view of one customer
type CustomerLedger struct {
	Customer       *entity.Customer `json:"customer"`
	Entries        []LedgerLine     `json:"entries"`
	OpeningBalance decimal.Decimal  `json:"openingBalance"`
	ClosingBalance decimal.Decimal  `json:"closingBalance"`
	TotalDebit     decimal.Decimal  `json:"totalDebit"`
	TotalCredit    decimal.Decimal  `json:"totalCredit"`
}

// GetCustomerLedger returns the customer's entries in (date, insertion)
// order. Running balances always start from the first entry ever posted, so
// a range only hides lines; it never changes their balances.
func (s *LedgerService) GetCustomerLedger(ctx context.Context, customerID uuid.UUID, rng *DateRange) (*CustomerLedger, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	if rng != nil && rng.From != nil && rng.To != nil && rng.To.Before(*rng.From) {
		return nil, apperror.NewBadRequestError("from must not be after to")
	}

	entries, err := s.ledgerRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	out := &CustomerLedger{
		Customer:       customer,
		Entries:        []LedgerLine{},
		OpeningBalance: decimal.Zero,
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
	}

	running := decimal.Zero
	for _, e := range entries {
		running = running.Add(e.Delta())
		switch {
		case rng.before(e.EntryDate):
			out.OpeningBalance = running
			continue
		case rng.after(e.EntryDate):
			continue
		}
		out.TotalDebit = out.TotalDebit.Add(e.Debit)
		out.TotalCredit = out.TotalCredit.Add(e.Credit)
		out.Entries = append(out.Entries, LedgerLine{
			ID:        e.ID,
			Date:      e.EntryDate,
			Type:      e.Type,
			Reference: e.Reference,
			Debit:     e.Debit,
			Credit:    e.Credit,
			Balance:   running,
		})
	}

	out.ClosingBalance = out.OpeningBalance
	if n := len(out.Entries); n > 0 {
		out.ClosingBalance = out.Entries[n-1].Balance
	}
	return out, nil
}

// BalanceMismatch is a customer whose stored balance disagrees with a replay
// of its ledger.
type BalanceMismatch struct {
	CustomerID   uuid.UUID       `json:"customerId"`
	CustomerName string          `json:"customerName"`
	Stored       decimal.Decimal `json:"stored"`
	Replayed     decimal.Decimal `json:"replayed"`
}

// VerifyCustomer replays one customer's ledger. It returns nil when the
// stored balance matches.
func (s *LedgerService) VerifyCustomer(ctx context.Context, customerID uuid.UUID) (*BalanceMismatch, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	entries, err := s.ledgerRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	replayed := decimal.Zero
	for _, e := range entries {
		replayed = replayed.Add(e.Delta())
	}
	if replayed.Equal(customer.Balance) {
		return nil, nil
	}
	return &BalanceMismatch{
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Stored:       customer.Balance,
		Replayed:     replayed,
	}, nil
}

// VerifyTenant replays every ledger of the tenant in ctx.
func (s *LedgerService) VerifyTenant(ctx context.Context) ([]BalanceMismatch, error) {
	if _, ok := infraRepo.GetTenantID(ctx); !ok {
		return nil, apperror.ErrTenantRequired
	}

	customers, err := s.customerRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledgerRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	sums := make(map[uuid.UUID]decimal.Decimal, len(customers))
	for _, e := range entries {
		sums[e.CustomerID] = sums[e.CustomerID].Add(e.Delta())
	}

	mismatches := []BalanceMismatch{}
	for _, c := range customers {
		replayed := sums[c.ID]
		if !replayed.Equal(c.Balance) {
			mismatches = append(mismatches, BalanceMismatch{
				CustomerID:   c.ID,
				CustomerName: c.Name,
				Stored:       c.Balance,
				Replayed:     replayed,
			})
		}
	}

	if len(mismatches) > 0 {
		logger.FromContext(ctx).Warn("ledger balance mismatches",
			zap.Int("customers", len(customers)),
			zap.Int("mismatches", len(mismatches)),
		)
	}
	return mismatches, nil
}

// PaymentInput represents a payment recorded outside of imports
type PaymentInput struct {
	InvoiceID   *uuid.UUID
	Amount      decimal.Decimal
	PaymentDate time.Time
	Method      string
	Reference   string
}

// RecordPayment posts a credit to the customer, optionally against one of
// its invoices. The invoice is marked paid once its payments cover the total.
func (s *LedgerService) RecordPayment(ctx context.Context, customerID uuid.UUID, input *PaymentInput) (*entity.Payment, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}
	if !input.Amount.IsPositive() {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "amount", Message: "amount must be positive"}})
	}

	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = s.now()
	}
	paymentDate = time.Date(paymentDate.Year(), paymentDate.Month(), paymentDate.Day(), 0, 0, 0, 0, time.UTC)

	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		reference = utils.GenerateReferenceNo("PAY")
	}

	payment := &entity.Payment{
		TenantID:    tenantID,
		CustomerID:  customer.ID,
		InvoiceID:   input.InvoiceID,
		Reference:   reference,
		Amount:      input.Amount.Round(2),
		PaymentDate: paymentDate,
		Method:      strings.TrimSpace(input.Method),
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var invoice *entity.Invoice
		if input.InvoiceID != nil {
			invoice, err = s.invoiceRepo.GetByID(ctx, *input.InvoiceID)
			if err != nil {
				return err
			}
			if invoice == nil || invoice.CustomerID != customer.ID {
				return apperror.NewBadRequestError("Invoice does not belong to this customer")
			}
		}

		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		if err := s.Post(ctx, &entity.LedgerEntry{
			TenantID:   tenantID,
			CustomerID: customer.ID,
			EntryDate:  paymentDate,
			Type:       enum.LedgerEntryPayment,
			Reference:  reference,
			Credit:     payment.Amount,
			SourceID:   payment.ID,
		}); err != nil {
			return err
		}

		if invoice == nil || invoice.Status == enum.InvoiceStatusPaid {
			return nil
		}
		payments, err := s.paymentRepo.ListByInvoice(ctx, invoice.ID)
		if err != nil {
			return err
		}
		paid := decimal.Zero
		for _, p := range payments {
			paid = paid.Add(p.Amount)
		}
		if paid.GreaterThanOrEqual(invoice.Total) {
			return s.invoiceRepo.UpdateStatus(ctx, invoice.ID, enum.InvoiceStatusPaid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("payment recorded",
		zap.String("customer_id", customer.ID.String()),
		zap.String("reference", reference),
		zap.String("amount", payment.Amount.StringFixed(2)),
	)
	return payment, nil
}
