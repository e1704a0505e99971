package importer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanCell(t *testing.T) {
	assert.Equal(t, "00123", CleanCell(`="00123"`))
	assert.Equal(t, "Acme Co", CleanCell(`  "Acme Co" `))
	assert.Equal(t, "it's", CleanCell("it's"))
	assert.Equal(t, "", CleanCell("   "))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"100", "100"},
		{"1,234.50", "1234.5"},
		{"$1,234.50", "1234.5"},
		{"(12.50)", "-12.5"},
		{"AED 1,000", "1000"},
		{"1000 SAR", "1000"},
		{"€ 99", "99"},
		{"1.234,56", "1234.56"},
		{"12,5", "12.5"},
		{"1,234", "1234"},
		{`="100"`, "100"},
		{"1 234.25", "1234.25"},
		{"-7", "-7"},
		{"10.005", "10.01"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}

	_, err := ParseAmount("")
	assert.ErrorIs(t, err, ErrEmptyValue)

	for _, bad := range []string{"abc", "12..5", "(-5)", "1-2"} {
		_, err := ParseAmount(bad)
		assert.Error(t, err, bad)
	}
}

func TestNormalizer_ParseDate(t *testing.T) {
	date := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	dayFirst := NewNormalizer("DD/MM/YYYY")
	monthFirst := NewNormalizer("MM/DD/YYYY")

	tests := []struct {
		name string
		n    *Normalizer
		in   string
		want time.Time
	}{
		{"iso", dayFirst, "2024-06-01", date(2024, 6, 1)},
		{"iso with time", dayFirst, "2024-06-01 13:45:00", date(2024, 6, 1)},
		{"day first", dayFirst, "01/06/2024", date(2024, 6, 1)},
		{"month first tenant", monthFirst, "01/06/2024", date(2024, 1, 6)},
		{"day first falls back", dayFirst, "06/13/2024", date(2024, 6, 13)},
		{"month first falls back", monthFirst, "13/06/2024", date(2024, 6, 13)},
		{"dots", dayFirst, "1.6.2024", date(2024, 6, 1)},
		{"dashes", dayFirst, "01-06-2024", date(2024, 6, 1)},
		{"two digit year", dayFirst, "01/06/24", date(2024, 6, 1)},
		{"month name", dayFirst, "1 Jun 2024", date(2024, 6, 1)},
		{"excel serial", dayFirst, "45444", date(2024, 6, 1)},
		{"day first with minutes", dayFirst, "01/06/2024 10:30", date(2024, 6, 1)},
		{"day first with seconds", dayFirst, "01/06/2024 10:30:00", date(2024, 6, 1)},
		{"month first with time", monthFirst, "06/01/2024 9:05", date(2024, 6, 1)},
		{"iso with minutes", dayFirst, "2024-06-01 10:30", date(2024, 6, 1)},
		{"iso T with minutes", dayFirst, "2024-06-01T10:30", date(2024, 6, 1)},
		{"twelve hour clock", dayFirst, "01/06/2024 3:15 PM", date(2024, 6, 1)},
		{"two digit year with time", dayFirst, "01/06/24 23:59:59", date(2024, 6, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.n.ParseDate(tt.in)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	for _, bad := range []string{"", "soon", "31/31/2024", "12345", "01/06/2024 25:00"} {
		_, ok := dayFirst.ParseDate(bad)
		assert.False(t, ok, bad)
	}
}

var fullMapping = ColumnMapping{
	FieldInvoiceNo:    0,
	FieldCustomerName: 1,
	FieldPaymentType:  2,
	FieldPaymentDate:  3,
	FieldNetSales:     4,
	FieldVAT:          5,
	FieldSales:        6,
	FieldDiscount:     7,
}

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer("")

	rec, err := n.Normalize([]string{" INV-1 ", " Acme Co ", "Cash", "01/06/2024", "100", "5", "", ""}, fullMapping, 1)
	require.NoError(t, err)
	assert.Equal(t, "INV-1", rec.InvoiceNo)
	assert.Equal(t, "Acme Co", rec.CustomerName)
	assert.Equal(t, "Cash", rec.PaymentType)
	require.NotNil(t, rec.PaymentDate)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *rec.PaymentDate)
	assert.True(t, rec.Sales.Equal(decimal.NewFromInt(105)), "sales derived from net + vat, got %s", rec.Sales)
	assert.True(t, rec.GrossAmount().Equal(decimal.NewFromInt(105)))
	assert.Equal(t, 1, rec.RowIndex)
	assert.Empty(t, rec.Warnings)
}

func TestNormalizer_NormalizeDefaultsAndWarnings(t *testing.T) {
	n := NewNormalizer("")

	rec, err := n.Normalize([]string{"INV-2", "Acme", "", "someday", "abc", "5", "n/a", "2"}, fullMapping, 4)
	require.NoError(t, err)
	assert.Equal(t, DefaultPaymentType, rec.PaymentType)
	assert.Nil(t, rec.PaymentDate)
	assert.True(t, rec.NetSales.IsZero())
	assert.True(t, rec.Sales.Equal(decimal.NewFromInt(5)))
	assert.True(t, rec.GrossAmount().Equal(decimal.NewFromInt(3)))
	assert.Len(t, rec.Warnings, 3)

	explicit, err := n.Normalize([]string{"INV-3", "Acme", "", "", "100", "5", "110", "10"}, fullMapping, 5)
	require.NoError(t, err)
	assert.True(t, explicit.GrossAmount().Equal(decimal.NewFromInt(100)), "explicit sales wins, got %s", explicit.GrossAmount())

	// Only the two required columns mapped, and a short row.
	minimal, err := n.Normalize([]string{"INV-4"}, ColumnMapping{FieldInvoiceNo: 0, FieldCustomerName: 5}, 6)
	assert.Nil(t, minimal)
	assert.EqualError(t, err, "customerName is required")
}

func TestNormalizer_RequiredFields(t *testing.T) {
	n := NewNormalizer("")

	_, err := n.Normalize([]string{"INV-1", "   ", "Cash"}, fullMapping, 1)
	assert.EqualError(t, err, "customerName is required")

	_, err = n.Normalize([]string{`=""`, "Acme"}, fullMapping, 2)
	assert.EqualError(t, err, "invoiceNo is required")

	_, err = n.Normalize([]string{"", ""}, fullMapping, 3)
	assert.EqualError(t, err, "invoiceNo and customerName are required")
}

func TestNormalizer_AmountPrecisionWarnings(t *testing.T) {
	n := NewNormalizer("")

	rec, err := n.Normalize([]string{"INV-1", "Acme", "", "", "12.3456", "1.234", "", ""}, fullMapping, 2)
	require.NoError(t, err)
	assert.True(t, rec.NetSales.Equal(decimal.RequireFromString("12.35")), "got %s", rec.NetSales)
	assert.True(t, rec.VAT.Equal(decimal.RequireFromString("1.23")), "got %s", rec.VAT)
	assert.Equal(t, []string{
		`netSales "12.3456" has more than two decimals; rounded to 12.35`,
		`vat "1.234" is ambiguous; read as 1.23, not 1234`,
	}, rec.Warnings)

	clean, err := n.Normalize([]string{"INV-2", "Acme", "", "", "100.50", "0.125", "", ""}, fullMapping, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{`vat "0.125" has more than two decimals; rounded to 0.13`}, clean.Warnings)
}
