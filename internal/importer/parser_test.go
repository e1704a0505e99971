package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParse_CSVPreviewCap(t *testing.T) {
	data := "Invoice,Customer,Net\nINV-1,Acme Co,100\n\nINV-2,Blue Ridge,50\nINV-3,Cobalt,10\n"

	table := Parse(strings.NewReader(data), ParseOptions{Filename: "export.csv", MaxRows: 2})
	require.Empty(t, table.Error)
	assert.Equal(t, []string{"Invoice", "Customer", "Net"}, table.Headers)
	assert.Len(t, table.Rows, 2)
	assert.Equal(t, 3, table.TotalRows, "blank rows are not counted")
	assert.True(t, table.Truncated)

	full := Parse(strings.NewReader(data), ParseOptions{Filename: "export.csv"})
	assert.Len(t, full.Rows, 3)
	assert.False(t, full.Truncated)
	assert.Equal(t, "Cobalt", full.Rows[2][1])
	assert.Equal(t, []int{2, 4, 5}, full.RowNumbers, "row numbers count the blank line")
}

func TestParse_RowNumbersFollowSource(t *testing.T) {
	data := "\nInvoice,Customer,Note\n\n\nINV-1,Acme,\"two\nlines\"\n,,\nINV-2,Blue Ridge,\n"

	table := Parse(strings.NewReader(data), ParseOptions{})
	require.Empty(t, table.Error)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []int{5, 8}, table.RowNumbers)
	assert.Equal(t, "two\nlines", table.Rows[0][2])

	capped := Parse(strings.NewReader(data), ParseOptions{MaxRows: 1})
	assert.Equal(t, []int{5}, capped.RowNumbers)
}

func TestParse_DelimiterAndPadding(t *testing.T) {
	data := "Invoice;Customer;Amount\nINV-1;\"Acme; Co\";\"1.234,50\"\nINV-2;Blue Ridge\n"

	table := Parse(strings.NewReader(data), ParseOptions{})
	require.Empty(t, table.Error)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"INV-1", "Acme; Co", "1.234,50"}, table.Rows[0])
	assert.Equal(t, []string{"INV-2", "Blue Ridge", ""}, table.Rows[1], "short rows are padded")
}

func TestParse_BOMAndLegacyEncoding(t *testing.T) {
	withBOM := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Invoice,Customer\nINV-1,Acme\n")...)
	table := Parse(bytes.NewReader(withBOM), ParseOptions{})
	require.Empty(t, table.Error)
	assert.Equal(t, "Invoice", table.Headers[0])

	cp1252 := []byte("Invoice,Customer\nINV-1,Caf\xe9 Noir\n")
	table = Parse(bytes.NewReader(cp1252), ParseOptions{})
	require.Empty(t, table.Error)
	assert.Equal(t, "Café Noir", table.Rows[0][1])
}

func TestParse_EmptyHeaderNames(t *testing.T) {
	table := Parse(strings.NewReader("Invoice,,Customer\nINV-1,x,Acme\n"), ParseOptions{})
	require.Empty(t, table.Error)
	assert.Equal(t, []string{"Invoice", "Column 2", "Customer"}, table.Headers)
}

func TestParse_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Invoice No", "Customer Name", "Net Sales"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"INV-1", "Acme Co", 100}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"INV-2", "Blue Ridge", 250}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	// Magic bytes win over a misleading extension.
	table := Parse(bytes.NewReader(buf.Bytes()), ParseOptions{Filename: "upload.csv", MaxRows: 1})
	require.Empty(t, table.Error)
	assert.Equal(t, []string{"Invoice No", "Customer Name", "Net Sales"}, table.Headers)
	assert.Equal(t, [][]string{{"INV-1", "Acme Co", "100"}}, table.Rows)
	assert.Equal(t, []int{2}, table.RowNumbers)
	assert.Equal(t, 2, table.TotalRows)
	assert.True(t, table.Truncated)
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		opts    ParseOptions
		wantErr string
	}{
		{name: "empty", data: []byte("  \n"), wantErr: "file is empty"},
		{name: "legacy xls", data: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0, 0}, wantErr: "not supported"},
		{name: "xls extension", data: []byte("whatever"), opts: ParseOptions{Filename: "old.XLS"}, wantErr: "not supported"},
		{name: "corrupt xlsx", data: append([]byte("PK\x03\x04"), []byte("garbage")...), wantErr: "unreadable xlsx file"},
		{name: "too large", data: []byte("Invoice\nINV-1\n"), opts: ParseOptions{MaxBytes: 4}, wantErr: "byte limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := Parse(bytes.NewReader(tt.data), tt.opts)
			assert.Contains(t, table.Error, tt.wantErr)
			assert.Empty(t, table.Rows)
			assert.NotNil(t, table.Rows)
			assert.NotNil(t, table.RowNumbers)
		})
	}
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatXLSX, DetectFormat("a.xlsx", nil))
	assert.Equal(t, FormatXLS, DetectFormat("a.xls", nil))
	assert.Equal(t, FormatCSV, DetectFormat("a.txt", []byte("a,b")))
	assert.Equal(t, FormatXLSX, DetectFormat("", []byte("PK\x03\x04rest")))
}
