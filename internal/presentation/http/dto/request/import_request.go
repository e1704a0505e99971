package request

import "github.com/sangkips/ledger-api/internal/importer"

// ApplyImportRequest is the body of an apply from previewed rows
type ApplyImportRequest struct {
	ColumnMapping importer.ColumnMapping `json:"columnMapping" binding:"required"`
	Rows          [][]string             `json:"rows" binding:"required"`
	// RowNumbers echoes the preview's rowNumbers so errors name sheet rows
	RowNumbers []int `json:"rowNumbers"`
	// SkipDuplicates defaults to true when omitted
	SkipDuplicates *bool `json:"skipDuplicates"`
	DryRun         bool  `json:"dryRun"`
}

// SkipDuplicatesOrDefault resolves the optional flag
func (r *ApplyImportRequest) SkipDuplicatesOrDefault() bool {
	return r.SkipDuplicates == nil || *r.SkipDuplicates
}

// ApplyFileForm is the multipart form of an apply from the original upload.
// The file itself is read separately.
type ApplyFileForm struct {
	ColumnMapping  string `form:"column_mapping" binding:"required"`
	SkipDuplicates *bool  `form:"skip_duplicates"`
	DryRun         bool   `form:"dry_run"`
}
