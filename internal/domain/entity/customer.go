package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

// Customer is a tenant's debtor. Balance caches Σdebit − Σcredit over the
// customer's ledger entries and is only ever moved together with a posting.
type Customer struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_customers_tenant_name,priority:1" json:"tenant_id"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	NormalizedName string          `gorm:"size:255;not null;uniqueIndex:idx_customers_tenant_name,priority:2" json:"-"`
	Email          *string         `gorm:"size:255" json:"email,omitempty"`
	Phone          *string         `gorm:"size:50" json:"phone,omitempty"`
	Address        *string         `gorm:"type:text" json:"address,omitempty"`
	Balance        decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Relationships
	Tenant Tenant `gorm:"foreignKey:TenantID" json:"-"`
}

// BeforeCreate generates a UUID and the lookup key before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.NormalizedName == "" {
		c.NormalizedName = NormalizeCustomerName(c.Name)
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// NormalizeCustomerName collapses whitespace and case-folds a name so that
// "ACME  co" and "Acme Co" resolve to the same customer.
func NormalizeCustomerName(name string) string {
	collapsed := strings.Join(strings.Fields(name), " ")
	return cases.Fold().String(collapsed)
}
