package importer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sangkips/ledger-api/pkg/apperror"
)

// FieldKey names a canonical import field
type FieldKey string

const (
	FieldInvoiceNo    FieldKey = "invoiceNo"
	FieldCustomerName FieldKey = "customerName"
	FieldPaymentType  FieldKey = "paymentType"
	FieldPaymentDate  FieldKey = "paymentDate"
	FieldNetSales     FieldKey = "netSales"
	FieldVAT          FieldKey = "vat"
	FieldSales        FieldKey = "sales"
	FieldDiscount     FieldKey = "discount"
	FieldCost         FieldKey = "cost"
)

// Fields lists every canonical field in display order.
var Fields = []FieldKey{
	FieldInvoiceNo,
	FieldCustomerName,
	FieldPaymentType,
	FieldPaymentDate,
	FieldNetSales,
	FieldVAT,
	FieldSales,
	FieldDiscount,
	FieldCost,
}

// RequiredFields must be mapped before an apply is attempted.
var RequiredFields = []FieldKey{FieldInvoiceNo, FieldCustomerName}

func (k FieldKey) Known() bool {
	for _, f := range Fields {
		if f == k {
			return true
		}
	}
	return false
}

// ColumnMapping associates canonical fields with source column indices.
// Unmapped fields are absent.
type ColumnMapping map[FieldKey]int

// Index returns the column for k, if mapped.
func (m ColumnMapping) Index(k FieldKey) (int, bool) {
	i, ok := m[k]
	return i, ok
}

// Validate rejects a mapping that cannot drive an apply. All problems are
// returned together as a validation error.
func (m ColumnMapping) Validate() error {
	var problems []apperror.FieldError

	for _, k := range RequiredFields {
		if _, ok := m[k]; !ok {
			problems = append(problems, apperror.FieldError{
				Field:   string(k),
				Message: fmt.Sprintf("%s must be mapped to a column", k),
			})
		}
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		key := FieldKey(k)
		switch {
		case !key.Known():
			problems = append(problems, apperror.FieldError{Field: k, Message: "unknown field"})
		case m[key] < 0:
			problems = append(problems, apperror.FieldError{Field: k, Message: "column index must not be negative"})
		}
	}

	if len(problems) > 0 {
		return apperror.NewValidationError(problems)
	}
	return nil
}

// ParseMappingSpec reads "invoiceNo=0,customerName=1" style mappings.
func ParseMappingSpec(s string) (ColumnMapping, error) {
	m := ColumnMapping{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("mapping %q: expected field=column", part)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("mapping %q: column must be a number", part)
		}
		m[FieldKey(strings.TrimSpace(key))] = idx
	}
	return m, nil
}

// header aliases seen in legacy billing exports, compared after
// lowercasing and dropping everything but letters and digits
var fieldAliases = map[FieldKey][]string{
	FieldInvoiceNo:    {"invoiceno", "invoicenumber", "invoice", "invno", "invoiceid", "billno", "billnumber", "receiptno", "documentno", "docno"},
	FieldCustomerName: {"customername", "customer", "client", "clientname", "buyer", "party", "partyname", "accountname", "name"},
	FieldPaymentType:  {"paymenttype", "paymentmethod", "paymentmode", "paymode", "method", "tender", "terms"},
	FieldPaymentDate:  {"paymentdate", "paiddate", "datepaid", "date", "invoicedate", "transactiondate", "txndate"},
	FieldNetSales:     {"netsales", "netamount", "net", "subtotal", "amountexvat", "taxableamount", "netvalue"},
	FieldVAT:          {"vat", "vatamount", "tax", "taxamount", "gst", "salestax"},
	FieldSales:        {"sales", "grosssales", "gross", "total", "totalamount", "grandtotal", "amount", "amountincvat"},
	FieldDiscount:     {"discount", "discountamount", "disc", "rebate"},
	FieldCost:         {"cost", "costamount", "cogs", "costofsales", "costprice"},
}

// SuggestMapping proposes a mapping from header names. Aliases are tried in
// priority order per field and each column is claimed at most once. The
// result is only a suggestion for the user to confirm.
func SuggestMapping(headers []string) ColumnMapping {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = aliasKey(h)
	}

	m := ColumnMapping{}
	used := map[int]bool{}
	for _, field := range Fields {
		for _, alias := range fieldAliases[field] {
			idx := indexOf(normalized, alias, used)
			if idx >= 0 {
				m[field] = idx
				used[idx] = true
				break
			}
		}
	}
	return m
}

func indexOf(values []string, want string, used map[int]bool) int {
	for i, v := range values {
		if v == want && !used[i] {
			return i
		}
	}
	return -1
}

func aliasKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(CleanCell(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
