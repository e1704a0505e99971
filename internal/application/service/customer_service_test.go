package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/sangkips/ledger-api/internal/application/service"
	"github.com/sangkips/ledger-api/internal/domain/entity"
	"github.com/sangkips/ledger-api/internal/infrastructure/repository"
	"github.com/sangkips/ledger-api/pkg/apperror"
	"github.com/sangkips/ledger-api/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerService(t *testing.T) {
	f := newFixture(t)
	customers := service.NewCustomerService(f.customer)

	email := "ap@acme.test"
	created, err := customers.CreateCustomer(f.ctx, &service.CreateCustomerInput{Name: "  Acme   Co ", Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Acme Co", created.Name)
	assert.True(t, created.Balance.IsZero())

	_, err = customers.CreateCustomer(f.ctx, &service.CreateCustomerInput{Name: "ACME CO"})
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)

	_, err = customers.CreateCustomer(f.ctx, &service.CreateCustomerInput{Name: " "})
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)

	_, err = customers.CreateCustomer(context.Background(), &service.CreateCustomerInput{Name: "Orphan"})
	assert.ErrorIs(t, err, apperror.ErrTenantRequired)

	got, err := customers.GetCustomer(f.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	page, err := customers.ListCustomers(f.ctx, pagination.DefaultPagination(), "acme")
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Pagination.Total)
	require.Len(t, page.Items, 1)
}

func TestTenantService(t *testing.T) {
	db := newFixture(t).db
	tenants := service.NewTenantService(repository.NewTenantRepository(db))
	ctx := context.Background()

	tenant, err := tenants.CreateTenant(ctx, &service.CreateTenantInput{Name: "Gulf Traders LLC"})
	require.NoError(t, err)
	assert.Equal(t, "gulf-traders-llc", tenant.Slug)
	assert.Equal(t, entity.DateFormatDayFirst, tenant.Settings.DateFormat)

	_, err = tenants.CreateTenant(ctx, &service.CreateTenantInput{Name: "Gulf Traders", Slug: "gulf-traders-llc"})
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)

	updated, err := tenants.UpdateSettings(ctx, tenant.ID, &entity.TenantSettings{Currency: "aed"})
	require.NoError(t, err)
	assert.Equal(t, "AED", updated.Settings.Currency)
	assert.Equal(t, entity.DateFormatDayFirst, updated.Settings.DateFormat, "empty fields are kept")

	_, err = tenants.UpdateSettings(ctx, tenant.ID, &entity.TenantSettings{DateFormat: "YYYY/DD/MM"})
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)

	bySlug, err := tenants.GetTenantBySlug(ctx, "gulf-traders-llc")
	require.NoError(t, err)
	assert.Equal(t, "AED", bySlug.Settings.Currency)
}
