package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest represents a customer creation request
type CreateCustomerRequest struct {
	Name    string  `json:"name" binding:"required,max=255"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Address *string `json:"address"`
}

// RecordPaymentRequest records a payment received outside an import
type RecordPaymentRequest struct {
	InvoiceID *uuid.UUID      `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	// PaymentDate is YYYY-MM-DD; today when empty
	PaymentDate string `json:"payment_date"`
	Method      string `json:"method" binding:"omitempty,max=50"`
	Reference   string `json:"reference" binding:"omitempty,max=100"`
}
