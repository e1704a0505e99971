package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/ledger-api/internal/domain/entity"
	"github.com/sangkips/ledger-api/internal/domain/enum"
	domainRepo "github.com/sangkips/ledger-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

// Create is an atomic insert-or-reject on (tenant_id, invoice_no): a lost
// race surfaces as ErrDuplicate instead of a second invoice.
func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	res := conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(invoice)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domainRepo.ErrDuplicate
	}
	return nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).First(&invoice, "invoice_no = ?", invoiceNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus) error {
	return conn(ctx, r.db).Model(&entity.Invoice{}).
		Scopes(TenantScope(ctx)).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *invoiceRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Invoice, error) {
	var invoices []entity.Invoice
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).
		Where("customer_id = ?", customerID).
		Order("invoice_date ASC, invoice_no ASC").
		Find(&invoices).Error
	return invoices, err
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) domainRepo.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	return translateError(conn(ctx, r.db).Omit(clause.Associations).Create(payment).Error)
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := conn(ctx, r.db).Scopes(TenantScope(ctx)).
		Where("invoice_id = ?", invoiceID).
		Order("payment_date ASC, created_at ASC").
		Find(&payments).Error
	return payments, err
}
