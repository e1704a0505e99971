package importer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// DefaultPaymentType is used when the payment type column is absent or blank.
const DefaultPaymentType = "Credit"

// ErrEmptyValue is returned by ParseAmount for blank input.
var ErrEmptyValue = errors.New("empty value")

// TwoDigitYearPivot decides the century of two digit years: years more than
// this far in the future belong to the previous century.
var TwoDigitYearPivot = 20

var (
	numericPattern      = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)
	leadingCurrencyCode = regexp.MustCompile(`^[A-Za-z]{3}\s*`)
	trailingCurrency    = regexp.MustCompile(`\s*[A-Za-z]{3}$`)
	decimalComma        = regexp.MustCompile(`^[+-]?\d+,\d{1,2}$`)
	dotThousands        = regexp.MustCompile(`^[+-]?[1-9]\d{0,2}\.\d{3}$`)

	currencySymbols = strings.NewReplacer(
		"$", "", "€", "", "£", "", "¥", "", "₹", "",
		" ", "", "\u00a0", "", "\u202f", "", "'", "",
	)

	isoLayouts = append(withTimeOfDay("2006-01-02", "2006/01/02", "2006.01.02"),
		"2006-01-02T15:04",
		"2006-01-02T15:04:05",
		time.RFC3339,
	)
	dayFirstLayouts   = withTimeOfDay("2/1/2006", "2-1-2006", "2.1.2006", "2 Jan 2006", "2-Jan-2006")
	monthFirstLayouts = withTimeOfDay("1/2/2006", "1-2-2006", "1.2.2006", "Jan 2, 2006", "Jan 2 2006")
	dayFirstShort     = withTimeOfDay("2/1/06", "2-1-06", "2.1.06")
	monthFirstShort   = withTimeOfDay("1/2/06", "1-2-06", "1.2.06")

	// Billing exports often stamp the time of day after the date.
	timeOfDaySuffixes = []string{" 15:04", " 15:04:05", " 3:04 PM", " 3:04:05 PM"}
)

// withTimeOfDay returns the date layouts followed by each of them with a
// time of day appended.
func withTimeOfDay(dateLayouts ...string) []string {
	out := append([]string{}, dateLayouts...)
	for _, suffix := range timeOfDaySuffixes {
		for _, layout := range dateLayouts {
			out = append(out, layout+suffix)
		}
	}
	return out
}

// ImportRecord is one normalized row, ready for reconciliation.
type ImportRecord struct {
	InvoiceNo    string
	CustomerName string
	PaymentType  string
	PaymentDate  *time.Time
	NetSales     decimal.Decimal
	VAT          decimal.Decimal
	Sales        decimal.Decimal
	Discount     decimal.Decimal
	Cost         decimal.Decimal
	// RowIndex is the 1-based row in the source, used in messages only.
	RowIndex int
	Warnings []string
}

// GrossAmount is the invoice debit: sales less discount.
func (r *ImportRecord) GrossAmount() decimal.Decimal {
	return r.Sales.Sub(r.Discount)
}

// CleanCell removes spreadsheet artifacts from a cell: surrounding
// whitespace, the ="..." text formula and wrapping quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return strings.TrimSpace(s)
}

// ParseAmount parses a money cell leniently and rounds it to cents.
// Thousands separators, currency symbols or codes and accounting negatives
// like (12.50) are accepted. A decimal comma is recognised when it is the
// last separator or the only one and is followed by one or two digits.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := parseExactAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Round(2), nil
}

func parseExactAmount(s string) (decimal.Decimal, error) {
	s = CleanCell(s)
	if s == "" {
		return decimal.Zero, ErrEmptyValue
	}
	raw := s

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = leadingCurrencyCode.ReplaceAllString(s, "")
	s = trailingCurrency.ReplaceAllString(s, "")
	s = currencySymbols.Replace(s)

	switch {
	case strings.Contains(s, ".") && strings.Contains(s, ","):
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case decimalComma.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}

	if negative {
		if strings.HasPrefix(s, "-") {
			return decimal.Zero, fmt.Errorf("%q is not a number", raw)
		}
		s = "-" + s
	}
	if !numericPattern.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%q is not a number", raw)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", raw)
	}
	return d, nil
}

// Normalizer converts raw rows into ImportRecords for one tenant.
type Normalizer struct {
	monthFirst bool
	now        func() time.Time
}

// NewNormalizer returns a normalizer for a tenant date format setting.
// "MM/DD/YYYY" tries month-first dates before day-first; anything else keeps
// the day-first default.
func NewNormalizer(dateFormat string) *Normalizer {
	return &Normalizer{
		monthFirst: strings.EqualFold(strings.TrimSpace(dateFormat), "MM/DD/YYYY"),
		now:        time.Now,
	}
}

// ParseDate tries ISO, then the tenant's preferred day/month order, then the
// other order, then an Excel serial day number. The result is midnight UTC.
func (n *Normalizer) ParseDate(s string) (time.Time, bool) {
	s = CleanCell(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}

	long, short := dayFirstLayouts, dayFirstShort
	otherLong, otherShort := monthFirstLayouts, monthFirstShort
	if n.monthFirst {
		long, otherLong = otherLong, long
		short, otherShort = otherShort, short
	}

	for _, layouts := range [][]string{long, otherLong} {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return dateOnly(t), true
			}
		}
	}

	pivot := n.now().Year() + TwoDigitYearPivot
	for _, layouts := range [][]string{short, otherShort} {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				if t.Year() > pivot {
					t = t.AddDate(-100, 0, 0)
				}
				return dateOnly(t), true
			}
		}
	}

	// Spreadsheets exported without formatting leave the serial day number.
	if serial, err := strconv.Atoi(s); err == nil && serial >= 20000 && serial <= 80000 {
		if t, err := excelize.ExcelDateToTime(float64(serial), false); err == nil {
			return dateOnly(t), true
		}
	}

	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Normalize converts a raw row into an ImportRecord. An error means the row
// cannot be imported; malformed optional values only produce warnings.
func (n *Normalizer) Normalize(row []string, m ColumnMapping, rowIndex int) (*ImportRecord, error) {
	rec := &ImportRecord{RowIndex: rowIndex}

	rec.InvoiceNo = cell(row, m, FieldInvoiceNo)
	rec.CustomerName = cell(row, m, FieldCustomerName)

	var missing []string
	if rec.InvoiceNo == "" {
		missing = append(missing, string(FieldInvoiceNo))
	}
	if rec.CustomerName == "" {
		missing = append(missing, string(FieldCustomerName))
	}
	switch len(missing) {
	case 1:
		return nil, fmt.Errorf("%s is required", missing[0])
	case 2:
		return nil, fmt.Errorf("%s and %s are required", missing[0], missing[1])
	}

	rec.PaymentType = cell(row, m, FieldPaymentType)
	if rec.PaymentType == "" {
		rec.PaymentType = DefaultPaymentType
	}

	if raw := cell(row, m, FieldPaymentDate); raw != "" {
		if t, ok := n.ParseDate(raw); ok {
			rec.PaymentDate = &t
		} else {
			rec.warn("paymentDate %q is not a recognised date; imported as unpaid", raw)
		}
	}

	rec.NetSales = rec.amount(row, m, FieldNetSales)
	rec.VAT = rec.amount(row, m, FieldVAT)
	rec.Discount = rec.amount(row, m, FieldDiscount)
	rec.Cost = rec.amount(row, m, FieldCost)

	derived := rec.NetSales.Add(rec.VAT)
	raw := cell(row, m, FieldSales)
	if raw == "" {
		rec.Sales = derived
	} else if sales, err := rec.centsAmount(FieldSales, raw); err == nil {
		rec.Sales = sales
	} else {
		rec.Sales = derived
		rec.warn("sales %q is not a number; using netSales + vat", raw)
	}

	return rec, nil
}

func (r *ImportRecord) amount(row []string, m ColumnMapping, key FieldKey) decimal.Decimal {
	raw := cell(row, m, key)
	if raw == "" {
		return decimal.Zero
	}
	d, err := r.centsAmount(key, raw)
	if err != nil {
		r.warn("%s %q is not a number; using 0", key, raw)
		return decimal.Zero
	}
	return d
}

// centsAmount parses raw and rounds it to cents, warning when that changes
// the value. A lone dot before three digits is most likely a thousands
// separator and gets its own hint.
func (r *ImportRecord) centsAmount(key FieldKey, raw string) (decimal.Decimal, error) {
	exact, err := parseExactAmount(raw)
	if err != nil {
		return decimal.Zero, err
	}
	d := exact.Round(2)
	switch {
	case dotThousands.MatchString(CleanCell(raw)):
		r.warn("%s %q is ambiguous; read as %s, not %s", key, raw, d.StringFixed(2), exact.Shift(3).String())
	case !d.Equal(exact):
		r.warn("%s %q has more than two decimals; rounded to %s", key, raw, d.StringFixed(2))
	}
	return d, nil
}

func (r *ImportRecord) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// cell returns the cleaned value for key, or "" when unmapped or out of range.
func cell(row []string, m ColumnMapping, key FieldKey) string {
	idx, ok := m.Index(key)
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return CleanCell(row[idx])
}
