package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/ledger-api/internal/domain/entity"
	"github.com/sangkips/ledger-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CustomerRepository defines the interface for customer data operations.
// All methods are scoped to the tenant carried by ctx.
type CustomerRepository interface {
	// Create inserts a customer; ErrDuplicate if the normalized name is taken.
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	GetByNormalizedName(ctx context.Context, normalizedName string) (*entity.Customer, error)
	// FindOrCreate returns the existing customer with the same normalized name,
	// or inserts customer. created reports which happened.
	FindOrCreate(ctx context.Context, customer *entity.Customer) (found *entity.Customer, created bool, err error)
	// AdjustBalance adds delta to the cached balance.
	AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error)
	ListAll(ctx context.Context) ([]entity.Customer, error)
}
