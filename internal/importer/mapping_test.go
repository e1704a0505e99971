package importer

import (
	"net/http"
	"testing"

	"github.com/sangkips/ledger-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnMapping_Validate(t *testing.T) {
	assert.NoError(t, ColumnMapping{FieldInvoiceNo: 0, FieldCustomerName: 1}.Validate())

	err := ColumnMapping{FieldNetSales: 2}.Validate()
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
	require.Len(t, appErr.Errors, 2)
	assert.Equal(t, "invoiceNo", appErr.Errors[0].Field)
	assert.Equal(t, "customerName", appErr.Errors[1].Field)

	err = ColumnMapping{FieldInvoiceNo: 0, FieldCustomerName: -1, "colour": 3}.Validate()
	appErr = apperror.GetAppError(err)
	require.Len(t, appErr.Errors, 2)
	assert.Equal(t, "colour", appErr.Errors[0].Field)
	assert.Equal(t, "unknown field", appErr.Errors[0].Message)
	assert.Equal(t, "customerName", appErr.Errors[1].Field)
}

func TestParseMappingSpec(t *testing.T) {
	m, err := ParseMappingSpec("invoiceNo=0, customerName=1,,netSales = 4")
	require.NoError(t, err)
	assert.Equal(t, ColumnMapping{FieldInvoiceNo: 0, FieldCustomerName: 1, FieldNetSales: 4}, m)

	_, err = ParseMappingSpec("invoiceNo")
	assert.Error(t, err)
	_, err = ParseMappingSpec("invoiceNo=A")
	assert.Error(t, err)
}

func TestSuggestMapping(t *testing.T) {
	headers := []string{"Invoice #", "Customer", "Payment Type", "Date", "Net Sales", "VAT Amount", "Total", "Discount", "Cost", "Notes"}

	got := SuggestMapping(headers)
	assert.Equal(t, ColumnMapping{
		FieldInvoiceNo:    0,
		FieldCustomerName: 1,
		FieldPaymentType:  2,
		FieldPaymentDate:  3,
		FieldNetSales:     4,
		FieldVAT:          5,
		FieldSales:        6,
		FieldDiscount:     7,
		FieldCost:         8,
	}, got)
	assert.NoError(t, got.Validate())

	// A column is claimed once: "Amount" goes to sales, nothing else takes it.
	got = SuggestMapping([]string{"Bill No", "Client", "Amount"})
	assert.Equal(t, ColumnMapping{FieldInvoiceNo: 0, FieldCustomerName: 1, FieldSales: 2}, got)

	assert.Empty(t, SuggestMapping([]string{"foo", "bar"}))
}
