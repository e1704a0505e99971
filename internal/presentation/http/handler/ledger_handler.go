package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/ledger-api/internal/application/service"
	"github.com/sangkips/ledger-api/internal/presentation/http/dto/response"
)

// LedgerHandler exposes tenant-wide ledger checks
type LedgerHandler struct {
	ledgerService *service.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerService *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// Verify replays every customer's ledger and lists stored balances that
// disagree with it
func (h *LedgerHandler) Verify(c *gin.Context) {
	mismatches, err := h.ledgerService.VerifyTenant(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if mismatches == nil {
		mismatches = []service.BalanceMismatch{}
	}

	message := "All balances match the ledger"
	if len(mismatches) > 0 {
		message = "Balance mismatches found"
	}
	response.OK(c, message, gin.H{
		"consistent": len(mismatches) == 0,
		"mismatches": mismatches,
	})
}
