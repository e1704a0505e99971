package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/ledger-api/internal/domain/entity"
	domainRepo "github.com/sangkips/ledger-api/internal/domain/repository"
	"github.com/sangkips/ledger-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) domainRepo.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return translateError(conn(ctx, r.db).Omit(clause.Associations).Create(customer).Error)
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	var customer entity.Customer
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (r *customerRepository) GetByNormalizedName(ctx context.Context, normalizedName string) (*entity.Customer, error) {
	var customer entity.Customer
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).
		First(&customer, "normalized_name = ?", normalizedName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

// FindOrCreate inserts with ON CONFLICT DO NOTHING against the
// (tenant_id, normalized_name) index, so two concurrent imports naming the
// same new customer end up sharing one row.
func (r *customerRepository) FindOrCreate(ctx context.Context, customer *entity.Customer) (*entity.Customer, bool, error) {
	if customer.NormalizedName == "" {
		customer.NormalizedName = entity.NormalizeCustomerName(customer.Name)
	}

	existing, err := r.GetByNormalizedName(ctx, customer.NormalizedName)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	res := conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(customer)
	if res.Error != nil {
		return nil, false, translateError(res.Error)
	}
	if res.RowsAffected == 1 {
		return customer, true, nil
	}

	existing, err = r.GetByNormalizedName(ctx, customer.NormalizedName)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("customer %q vanished after conflicting insert", customer.Name)
	}
	return existing, false, nil
}

func (r *customerRepository) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	res := conn(ctx, r.db).Model(&entity.Customer{}).
		Scopes(TenantScope(ctx)).
		Where("id = ?", id).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("customer %s not found", id)
	}
	return nil
}

// likeEscaper makes search input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (r *customerRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	var customers []entity.Customer
	var total int64

	query := conn(ctx, r.db).Model(&entity.Customer{}).Scopes(TenantScope(ctx))

	if search = strings.TrimSpace(search); search != "" {
		like := "%" + likeEscaper.Replace(entity.NormalizeCustomerName(search)) + "%"
		query = query.Where(`normalized_name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\'`, like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&customers).Error

	return customers, total, err
}

func (r *customerRepository) ListAll(ctx context.Context) ([]entity.Customer, error) {
	var customers []entity.Customer
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).Order("name ASC").Find(&customers).Error
	return customers, err
}
