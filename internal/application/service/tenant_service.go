package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/ledger-api/internal/domain/entity"
	"github.com/sangkips/ledger-api/internal/domain/repository"
	"github.com/sangkips/ledger-api/pkg/apperror"
	"github.com/sangkips/ledger-api/pkg/utils"
)

// TenantService handles tenant-related operations
type TenantService struct {
	tenantRepo repository.TenantRepository
}

// NewTenantService creates a new tenant service
func NewTenantService(tenantRepo repository.TenantRepository) *TenantService {
	return &TenantService{tenantRepo: tenantRepo}
}

// CreateTenantInput represents input for creating a tenant
type CreateTenantInput struct {
	Name     string
	Slug     string
	Settings *entity.TenantSettings
}

// CreateTenant creates a new tenant. The slug defaults to one derived from
// the name.
func (s *TenantService) CreateTenant(ctx context.Context, input *CreateTenantInput) (*entity.Tenant, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "Name is required"}})
	}
	slug := utils.Slugify(input.Slug)
	if slug == "" {
		slug = utils.Slugify(name)
	}

	// Check if slug already exists
	existing, err := s.tenantRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Tenant slug already exists")
	}

	settings := entity.DefaultTenantSettings()
	if input.Settings != nil {
		if err := validateSettings(input.Settings); err != nil {
			return nil, err
		}
		settings = mergeSettings(settings, *input.Settings)
	}

	tenant := &entity.Tenant{
		Name:     name,
		Slug:     slug,
		Settings: settings,
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	return tenant, nil
}

// GetTenant retrieves a tenant by ID
func (s *TenantService) GetTenant(ctx context.Context, id uuid.UUID) (*entity.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperror.ErrNotFound
	}
	return tenant, nil
}

// GetTenantBySlug retrieves a tenant by slug
func (s *TenantService) GetTenantBySlug(ctx context.Context, slug string) (*entity.Tenant, error) {
	tenant, err := s.tenantRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperror.NewNotFoundError("Tenant")
	}
	return tenant, nil
}

// UpdateSettings changes the tenant's localization. Empty fields keep their
// current value.
func (s *TenantService) UpdateSettings(ctx context.Context, id uuid.UUID, settings *entity.TenantSettings) (*entity.Tenant, error) {
	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	tenant, err := s.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}
	tenant.Settings = mergeSettings(tenant.Settings, *settings)

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func validateSettings(settings *entity.TenantSettings) error {
	switch settings.DateFormat {
	case "", entity.DateFormatDayFirst, entity.DateFormatMonthFirst:
		return nil
	}
	return apperror.NewValidationError([]apperror.FieldError{{
		Field:   "date_format",
		Message: "date_format must be " + entity.DateFormatDayFirst + " or " + entity.DateFormatMonthFirst,
	}})
}

func mergeSettings(current, update entity.TenantSettings) entity.TenantSettings {
	if update.Currency != "" {
		current.Currency = strings.ToUpper(update.Currency)
	}
	if update.Locale != "" {
		current.Locale = update.Locale
	}
	if update.DateFormat != "" {
		current.DateFormat = update.DateFormat
	}
	return current
}
