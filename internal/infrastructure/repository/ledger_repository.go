package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/ledger-api/internal/domain/entity"
	domainRepo "github.com/sangkips/ledger-api/internal/domain/repository"
	"gorm.io/gorm"
)

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger entry repository
func NewLedgerRepository(db *gorm.DB) domainRepo.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Create(ctx context.Context, entry *entity.LedgerEntry) error {
	return conn(ctx, r.db).Create(entry).Error
}

func (r *ledgerRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.LedgerEntry, error) {
	var entries []entity.LedgerEntry
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).
		Where("customer_id = ?", customerID).
		Order("entry_date ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *ledgerRepository) ListAll(ctx context.Context) ([]entity.LedgerEntry, error) {
	var entries []entity.LedgerEntry
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).
		Order("customer_id ASC, entry_date ASC, id ASC").
		Find(&entries).Error
	return entries, err
}
