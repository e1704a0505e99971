package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/ledger-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice sources
const (
	InvoiceSourceImport = "import"
	InvoiceSourceManual = "manual"
)

// Invoice is a sale posted to a customer's ledger. InvoiceNo is the
// per-tenant natural key that keeps repeated imports idempotent.
type Invoice struct {
	ID          uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID    uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_tenant_no,priority:1" json:"tenant_id"`
	CustomerID  uuid.UUID          `gorm:"type:uuid;not null;index" json:"customer_id"`
	InvoiceNo   string             `gorm:"size:100;not null;uniqueIndex:idx_invoices_tenant_no,priority:2" json:"invoice_no"`
	InvoiceDate time.Time          `gorm:"not null" json:"invoice_date"`
	PaymentType string             `gorm:"size:50" json:"payment_type"`
	NetSales    decimal.Decimal    `gorm:"type:numeric(18,2);not null;default:0" json:"net_sales"`
	VAT         decimal.Decimal    `gorm:"type:numeric(18,2);not null;default:0" json:"vat"`
	Sales       decimal.Decimal    `gorm:"type:numeric(18,2);not null;default:0" json:"sales"`
	Discount    decimal.Decimal    `gorm:"type:numeric(18,2);not null;default:0" json:"discount"`
	Cost        decimal.Decimal    `gorm:"type:numeric(18,2);not null;default:0" json:"cost"`
	Total       decimal.Decimal    `gorm:"type:numeric(18,2);not null;default:0" json:"total"`
	Status      enum.InvoiceStatus `gorm:"default:0" json:"status"`
	Source      string             `gorm:"size:20;not null" json:"source"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`

	// Relationships
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}
