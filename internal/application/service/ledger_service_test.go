package service_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/ledger-api/internal/application/service"
	"github.com/sangkips/ledger-api/internal/domain/entity"
	"github.com/sangkips/ledger-api/internal/domain/enum"
	"github.com/sangkips/ledger-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func balances(lines []service.LedgerLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Balance.String()
	}
	return out
}

// seedStatement posts, for one customer:
// Jan 10 debit 100, Feb 15 debit 50 and credit 50, Mar 20 debit 30.
func seedStatement(t *testing.T, f *fixture) *entity.Customer {
	t.Helper()

	apply := func(importDate time.Time, rows ...[]string) {
		_, err := f.imports.ApplyRows(f.ctx, exportMapping, rows, service.ApplyOptions{SkipDuplicates: true, ImportDate: importDate})
		require.NoError(t, err)
	}
	apply(day(2024, 1, 10), row("INV-1", "Acme Co", "", "100", "0"))
	apply(day(2024, 3, 20), row("INV-3", "Acme Co", "", "30", "0"))
	apply(day(2024, 3, 20), row("INV-2", "Acme Co", "15/02/2024", "50", "0"))

	return f.mustCustomer(t, "Acme Co")
}

func TestGetCustomerLedger_RunningBalance(t *testing.T) {
	f := newFixture(t)
	acme := seedStatement(t, f)

	full, err := f.ledger.GetCustomerLedger(f.ctx, acme.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "150", "100", "130"}, balances(full.Entries), "ordered by date, not insertion")
	assert.True(t, full.OpeningBalance.IsZero())
	assert.True(t, full.ClosingBalance.Equal(acme.Balance))
	assert.True(t, full.TotalDebit.Equal(decimal.NewFromInt(180)))
	assert.True(t, full.TotalCredit.Equal(decimal.NewFromInt(50)))
}

func TestGetCustomerLedger_DateRange(t *testing.T) {
	f := newFixture(t)
	acme := seedStatement(t, f)

	from, to := day(2024, 2, 1), day(2024, 2, 29)
	feb, err := f.ledger.GetCustomerLedger(f.ctx, acme.ID, &service.DateRange{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, []string{"150", "100"}, balances(feb.Entries), "balances still count earlier entries")
	assert.True(t, feb.OpeningBalance.Equal(decimal.NewFromInt(100)))
	assert.True(t, feb.ClosingBalance.Equal(decimal.NewFromInt(100)))
	assert.True(t, feb.TotalDebit.Equal(decimal.NewFromInt(50)))
	assert.True(t, feb.TotalCredit.Equal(decimal.NewFromInt(50)))

	march := day(2024, 3, 1)
	tail, err := f.ledger.GetCustomerLedger(f.ctx, acme.ID, &service.DateRange{From: &march})
	require.NoError(t, err)
	assert.Equal(t, []string{"130"}, balances(tail.Entries))
	assert.True(t, tail.OpeningBalance.Equal(decimal.NewFromInt(100)))

	jan := day(2024, 1, 31)
	head, err := f.ledger.GetCustomerLedger(f.ctx, acme.ID, &service.DateRange{To: &jan})
	require.NoError(t, err)
	assert.Equal(t, []string{"100"}, balances(head.Entries))

	empty := day(2023, 1, 1)
	none, err := f.ledger.GetCustomerLedger(f.ctx, acme.ID, &service.DateRange{To: &empty})
	require.NoError(t, err)
	assert.Empty(t, none.Entries)
	assert.NotNil(t, none.Entries)
	assert.True(t, none.ClosingBalance.IsZero())

	_, err = f.ledger.GetCustomerLedger(f.ctx, acme.ID, &service.DateRange{From: &to, To: &from})
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)

	_, err = f.ledger.GetCustomerLedger(f.ctx, uuid.New(), nil)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}

func TestVerify_DetectsDrift(t *testing.T) {
	f := newFixture(t)
	acme := seedStatement(t, f)

	mismatch, err := f.ledger.VerifyCustomer(f.ctx, acme.ID)
	require.NoError(t, err)
	assert.Nil(t, mismatch)

	require.NoError(t, f.db.Model(&entity.Customer{}).Where("id = ?", acme.ID).
		UpdateColumn("balance", decimal.NewFromInt(999)).Error)

	mismatch, err = f.ledger.VerifyCustomer(f.ctx, acme.ID)
	require.NoError(t, err)
	require.NotNil(t, mismatch)
	assert.True(t, mismatch.Stored.Equal(decimal.NewFromInt(999)))
	assert.True(t, mismatch.Replayed.Equal(decimal.NewFromInt(130)))

	all, err := f.ledger.VerifyTenant(f.ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, acme.ID, all[0].CustomerID)
}

func TestRecordPayment_SettlesInvoice(t *testing.T) {
	f := newFixture(t)

	_, err := f.imports.ApplyRows(f.ctx, exportMapping, [][]string{row("INV-1", "Acme Co", "", "100", "5")}, service.ApplyOptions{SkipDuplicates: true})
	require.NoError(t, err)
	acme := f.mustCustomer(t, "Acme Co")
	invoice, err := f.invoices.GetByInvoiceNo(f.ctx, "INV-1")
	require.NoError(t, err)

	first, err := f.ledger.RecordPayment(f.ctx, acme.ID, &service.PaymentInput{
		InvoiceID:   &invoice.ID,
		Amount:      decimal.NewFromInt(50),
		PaymentDate: day(2024, 7, 1),
		Method:      "Bank",
	})
	require.NoError(t, err)
	assert.Contains(t, first.Reference, "PAY-")

	invoice, err = f.invoices.GetByID(f.ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusOutstanding, invoice.Status)

	_, err = f.ledger.RecordPayment(f.ctx, acme.ID, &service.PaymentInput{
		InvoiceID: &invoice.ID,
		Amount:    decimal.NewFromInt(55),
		Reference: "CHQ-1001",
	})
	require.NoError(t, err)

	invoice, err = f.invoices.GetByID(f.ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPaid, invoice.Status)

	acme = f.mustCustomer(t, "Acme Co")
	assert.True(t, acme.Balance.IsZero(), "got %s", acme.Balance)

	mismatches, err := f.ledger.VerifyTenant(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, mismatches)
}

func TestRecordPayment_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.imports.ApplyRows(f.ctx, exportMapping, [][]string{
		row("INV-1", "Acme Co", "", "100", "0"),
		row("INV-2", "Blue Ridge", "", "100", "0"),
	}, service.ApplyOptions{SkipDuplicates: true})
	require.NoError(t, err)
	acme := f.mustCustomer(t, "Acme Co")
	other, err := f.invoices.GetByInvoiceNo(f.ctx, "INV-2")
	require.NoError(t, err)

	_, err = f.ledger.RecordPayment(f.ctx, acme.ID, &service.PaymentInput{Amount: decimal.Zero})
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)

	_, err = f.ledger.RecordPayment(f.ctx, acme.ID, &service.PaymentInput{InvoiceID: &other.ID, Amount: decimal.NewFromInt(10)})
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)

	_, err = f.ledger.RecordPayment(f.ctx, uuid.New(), &service.PaymentInput{Amount: decimal.NewFromInt(10)})
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)

	acme = f.mustCustomer(t, "Acme Co")
	assert.True(t, acme.Balance.Equal(decimal.NewFromInt(100)), "failed payments post nothing")
}

func TestPost_RejectsMalformedEntries(t *testing.T) {
	f := newFixture(t)
	acme, _, err := f.customer.FindOrCreate(f.ctx, &entity.Customer{TenantID: f.tenant.ID, Name: "Acme Co"})
	require.NoError(t, err)

	err = f.ledger.Post(f.ctx, &entity.LedgerEntry{
		TenantID:   f.tenant.ID,
		CustomerID: acme.ID,
		EntryDate:  day(2024, 1, 1),
		Type:       enum.LedgerEntryInvoice,
		Reference:  "X",
		Debit:      decimal.NewFromInt(10),
		Credit:     decimal.NewFromInt(10),
		SourceID:   uuid.New(),
	})
	assert.ErrorIs(t, err, entity.ErrLedgerEntrySides)
}
