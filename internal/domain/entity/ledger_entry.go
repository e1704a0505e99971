package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/ledger-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrLedgerEntrySides    = errors.New("ledger entry must have exactly one non-zero side")
	ErrLedgerEntryNegative = errors.New("ledger entry amounts must not be negative")
)

// LedgerEntry is one immutable debit or credit posting against a customer.
// ID increases with insertion and breaks ties between same-day entries.
// Corrections are new offsetting entries, never updates.
type LedgerEntry struct {
	ID         uint64               `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID   uuid.UUID            `gorm:"type:uuid;not null;index" json:"tenant_id"`
	CustomerID uuid.UUID            `gorm:"type:uuid;not null;index:idx_ledger_customer_date,priority:1" json:"customer_id"`
	EntryDate  time.Time            `gorm:"not null;index:idx_ledger_customer_date,priority:2" json:"date"`
	Type       enum.LedgerEntryType `gorm:"not null" json:"type"`
	Reference  string               `gorm:"size:100;not null" json:"reference"`
	Debit      decimal.Decimal      `gorm:"type:numeric(18,2);not null;default:0" json:"debit"`
	Credit     decimal.Decimal      `gorm:"type:numeric(18,2);not null;default:0;check:chk_ledger_entries_one_side,(debit = 0) <> (credit = 0)" json:"credit"`
	SourceID   uuid.UUID            `gorm:"type:uuid;not null" json:"source_id"`
	CreatedAt  time.Time            `json:"created_at"`
}

// TableName returns the table name for the LedgerEntry model
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// CheckAmounts enforces the posting shape: no negatives, exactly one side set.
func (e *LedgerEntry) CheckAmounts() error {
	if e.Debit.IsNegative() || e.Credit.IsNegative() {
		return ErrLedgerEntryNegative
	}
	if e.Debit.IsZero() == e.Credit.IsZero() {
		return ErrLedgerEntrySides
	}
	if !e.Type.Valid() {
		return fmt.Errorf("invalid ledger entry type %d", e.Type)
	}
	return nil
}

// Delta is the entry's effect on the customer balance.
func (e *LedgerEntry) Delta() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// BeforeCreate refuses malformed postings.
func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	return e.CheckAmounts()
}

// BeforeUpdate refuses in-place edits.
func (e *LedgerEntry) BeforeUpdate(tx *gorm.DB) error {
	return errors.New("ledger entries are immutable")
}
