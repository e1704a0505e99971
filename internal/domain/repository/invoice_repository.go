package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/ledger-api/internal/domain/entity"
	"github.com/sangkips/ledger-api/internal/domain/enum"
)

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	// Create inserts an invoice; ErrDuplicate if the invoice number exists.
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	// GetByInvoiceNo is the duplicate lookup used by imports.
	GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Invoice, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]entity.Payment, error)
}
