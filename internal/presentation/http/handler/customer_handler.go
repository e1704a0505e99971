package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/ledger-api/internal/application/service"
	"github.com/sangkips/ledger-api/internal/presentation/http/dto/request"
	"github.com/sangkips/ledger-api/internal/presentation/http/dto/response"
	"github.com/sangkips/ledger-api/pkg/pagination"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	customerService *service.CustomerService
	ledgerService   *service.LedgerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *service.CustomerService, ledgerService *service.LedgerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService, ledgerService: ledgerService}
}

// List handles listing customers with page-based pagination
func (h *CustomerHandler) List(c *gin.Context) {
	params := pagination.FromStrings(c.DefaultQuery("page", "1"), c.DefaultQuery("per_page", "15"))

	result, err := h.customerService.ListCustomers(c.Request.Context(), params, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Customers retrieved successfully", result)
}

// Get handles getting a customer by ID
func (h *CustomerHandler) Get(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer retrieved successfully", customer)
}

// Create handles creating a new customer
func (h *CustomerHandler) Create(c *gin.Context) {
	var req request.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), &service.CreateCustomerInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Customer created successfully", customer)
}

// RecordPayment handles a payment received directly from a customer
func (h *CustomerHandler) RecordPayment(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	paidAt := time.Now().UTC().Truncate(24 * time.Hour)
	if req.PaymentDate != "" {
		paidAt, err = time.Parse(dateLayout, req.PaymentDate)
		if err != nil {
			response.BadRequest(c, "payment_date must be a date in YYYY-MM-DD format")
			return
		}
	}

	payment, err := h.ledgerService.RecordPayment(c.Request.Context(), id, &service.PaymentInput{
		InvoiceID:   req.InvoiceID,
		Amount:      req.Amount,
		PaymentDate: paidAt,
		Method:      req.Method,
		Reference:   req.Reference,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment recorded successfully", payment)
}

// Ledger returns the customer's statement with running balances
func (h *CustomerHandler) Ledger(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	from, err := queryDate(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := queryDate(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}

	var rng *service.DateRange
	if from != nil || to != nil {
		rng = &service.DateRange{From: from, To: to}
	}

	ledger, err := h.ledgerService.GetCustomerLedger(c.Request.Context(), id, rng)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Ledger retrieved successfully", ledger)
}
