package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/ledger-api/internal/domain/entity"
)

// LedgerRepository stores immutable ledger entries. There is no update or
// delete: corrections are posted as new entries.
type LedgerRepository interface {
	Create(ctx context.Context, entry *entity.LedgerEntry) error
	// ListByCustomer returns entries ordered by entry date, then insertion.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.LedgerEntry, error)
	// ListAll returns every entry of the tenant in the same order.
	ListAll(ctx context.Context) ([]entity.LedgerEntry, error)
}
