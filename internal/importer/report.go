package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ImportReport summarises an apply. It is returned even when every row fails.
type ImportReport struct {
	SalesCreated     int      `json:"salesCreated"`
	CustomersCreated int      `json:"customersCreated"`
	PaymentsCreated  int      `json:"paymentsCreated"`
	Skipped          int      `json:"skipped"`
	Errors           []string `json:"errors"`
	Warnings         []string `json:"warnings"`
	Rows             int      `json:"rows"`
	// HiddenErrors counts errors dropped by Truncated.
	HiddenErrors int `json:"hiddenErrors,omitempty"`

	errorRows []int
}

func NewImportReport() *ImportReport {
	return &ImportReport{Errors: []string{}, Warnings: []string{}}
}

// AddError records a per-row failure as "Row N: msg".
func (r *ImportReport) AddError(row int, msg string) {
	r.Errors = append(r.Errors, fmt.Sprintf("Row %d: %s", row, msg))
	r.errorRows = append(r.errorRows, row)
}

// AddWarnings records normalization warnings for a row.
func (r *ImportReport) AddWarnings(row int, msgs []string) {
	for _, msg := range msgs {
		r.Warnings = append(r.Warnings, fmt.Sprintf("Row %d: %s", row, msg))
	}
}

// Failed reports whether any row failed.
func (r *ImportReport) Failed() bool {
	return len(r.Errors) > 0
}

// Truncated returns a copy whose error list holds at most limit entries.
// The full list stays available on the receiver for export.
func (r *ImportReport) Truncated(limit int) *ImportReport {
	out := *r
	out.Errors = append([]string{}, r.Errors...)
	out.Warnings = append([]string{}, r.Warnings...)
	out.errorRows = nil
	if limit >= 0 && len(out.Errors) > limit {
		out.HiddenErrors = len(out.Errors) - limit
		out.Errors = out.Errors[:limit]
	}
	if limit >= 0 && len(out.Warnings) > limit {
		out.Warnings = out.Warnings[:limit]
	}
	return &out
}

// WriteErrorsCSV writes every error as a row,message pair.
func (r *ImportReport) WriteErrorsCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"row", "message"}); err != nil {
		return err
	}
	for i, msg := range r.Errors {
		row := ""
		if i < len(r.errorRows) {
			row = strconv.Itoa(r.errorRows[i])
			msg = strings.TrimPrefix(msg, fmt.Sprintf("Row %d: ", r.errorRows[i]))
		}
		if err := cw.Write([]string{row, msg}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
