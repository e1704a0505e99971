// Package importer turns legacy billing exports into canonical import
// records: parsing, column mapping, row normalization and reporting.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Format is the container format of an uploaded file
type Format string

const (
	FormatUnknown Format = ""
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatXLS     Format = "xls"
)

// DefaultPreviewRows bounds a preview when the caller does not say otherwise.
const DefaultPreviewRows = 500

var (
	utf8BOM   = []byte{0xEF, 0xBB, 0xBF}
	zipMagic  = []byte{'P', 'K', 0x03, 0x04}
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

	candidateDelimiters = []rune{',', ';', '\t', '|'}
)

// ParseOptions controls a single parse.
type ParseOptions struct {
	Filename string
	// Format overrides sniffing when set.
	Format Format
	// MaxRows caps the returned data rows; 0 returns every row.
	MaxRows int
	// MaxBytes rejects larger inputs; 0 disables the check.
	MaxBytes int64
}

// Table is a parsed sheet: the header row plus raw data rows. A non-empty
// Error means the file could not be read and Rows is empty.
//
// RowNumbers[i] is the 1-based sheet row Rows[i] came from, with the header
// and any blank lines counted, so errors point at what the user sees.
type Table struct {
	Headers    []string   `json:"headers"`
	Rows       [][]string `json:"rows"`
	RowNumbers []int      `json:"rowNumbers"`
	TotalRows  int        `json:"totalRows"`
	Truncated bool       `json:"truncated"`
	Error     string     `json:"error,omitempty"`
}

func errorTable(format string, args ...any) *Table {
	return &Table{Headers: []string{}, Rows: [][]string{}, RowNumbers: []int{}, Error: fmt.Sprintf(format, args...)}
}

// Parse reads r into a Table. It never returns an error or panics; failures
// are reported through Table.Error.
func Parse(r io.Reader, opts ParseOptions) (table *Table) {
	defer func() {
		if rec := recover(); rec != nil {
			table = errorTable("unreadable file: %v", rec)
		}
	}()

	data, err := readLimited(r, opts.MaxBytes)
	if err != nil {
		return errorTable("%s", err.Error())
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return errorTable("file is empty")
	}

	format := opts.Format
	if format == FormatUnknown {
		format = DetectFormat(opts.Filename, data)
	}

	var (
		records [][]string
		lines   []int
	)
	switch format {
	case FormatXLSX:
		records, err = readSpreadsheet(data)
	case FormatXLS:
		return errorTable("legacy .xls workbooks are not supported; save the sheet as .xlsx or .csv")
	default:
		records, lines, err = readDelimited(data)
	}
	if err != nil {
		return errorTable("unreadable %s file: %v", format, err)
	}

	return buildTable(records, lines, opts.MaxRows)
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("file exceeds the %d byte limit", maxBytes)
	}
	return data, nil
}

// DetectFormat sniffs the container from magic bytes, then the extension.
func DetectFormat(filename string, head []byte) Format {
	switch {
	case bytes.HasPrefix(head, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(head, ole2Magic):
		return FormatXLS
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".xls":
		return FormatXLS
	}
	return FormatCSV
}

func readSpreadsheet(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// readDelimited returns the records with the line each one starts on. The
// csv reader drops empty lines, so record positions alone would drift.
func readDelimited(data []byte) ([][]string, []int, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		// Legacy Windows exports.
		src = transform.NewReader(src, charmap.Windows1252.NewDecoder())
	}

	r := csv.NewReader(src)
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = false

	var (
		records [][]string
		lines   []int
	)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, lines, nil
		}
		if err != nil {
			return nil, nil, err
		}
		line, _ := r.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}
}

// sniffDelimiter picks the candidate seen most often on the first line.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	best, bestCount := ',', 0
	for _, d := range candidateDelimiters {
		if n := countOutsideQuotes(line, byte(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func countOutsideQuotes(line []byte, sep byte) int {
	n, quoted := 0, false
	for _, b := range line {
		switch {
		case b == '"':
			quoted = !quoted
		case b == sep && !quoted:
			n++
		}
	}
	return n
}

// buildTable takes the header from the first non-blank record. lines holds
// each record's source row; nil means records are already one per sheet row.
func buildTable(records [][]string, lines []int, maxRows int) *Table {
	t := &Table{Headers: []string{}, Rows: [][]string{}, RowNumbers: []int{}}

	headerFound := false
	for i, rec := range records {
		if isBlankRow(rec) {
			continue
		}
		if !headerFound {
			t.Headers = make([]string, len(rec))
			for i, h := range rec {
				h = CleanCell(h)
				if h == "" {
					h = fmt.Sprintf("Column %d", i+1)
				}
				t.Headers[i] = h
			}
			headerFound = true
			continue
		}

		t.TotalRows++
		if maxRows > 0 && len(t.Rows) >= maxRows {
			continue
		}
		row := make([]string, max(len(rec), len(t.Headers)))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
		rowNumber := i + 1
		if lines != nil {
			rowNumber = lines[i]
		}
		t.RowNumbers = append(t.RowNumbers, rowNumber)
	}

	if !headerFound {
		return errorTable("file has no header row")
	}
	t.Truncated = t.TotalRows > len(t.Rows)
	return t
}

func isBlankRow(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
