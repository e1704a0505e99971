package handler

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/ledger-api/internal/application/service"
	"github.com/sangkips/ledger-api/internal/config"
	"github.com/sangkips/ledger-api/internal/importer"
	"github.com/sangkips/ledger-api/internal/presentation/http/dto/request"
	"github.com/sangkips/ledger-api/internal/presentation/http/dto/response"
)

// ImportHandler handles spreadsheet import requests
type ImportHandler struct {
	importService *service.ImportService
	cfg           config.ImportConfig
}

// NewImportHandler creates a new import handler
func NewImportHandler(importService *service.ImportService, cfg config.ImportConfig) *ImportHandler {
	return &ImportHandler{importService: importService, cfg: cfg}
}

// Parse handles a file upload and returns a preview with a suggested mapping
func (h *ImportHandler) Parse(c *gin.Context) {
	file, filename, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	maxRows := 0
	if raw := c.PostForm("max_rows"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.BadRequest(c, "max_rows must be a positive integer")
			return
		}
		maxRows = n
	}

	result, err := h.importService.Preview(c.Request.Context(), file, filename, maxRows)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "File parsed successfully", result)
}

// Apply imports previewed rows
func (h *ImportHandler) Apply(c *gin.Context) {
	var req request.ApplyImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	report, err := h.importService.ApplyRows(c.Request.Context(), req.ColumnMapping, req.Rows, service.ApplyOptions{
		SkipDuplicates: req.SkipDuplicatesOrDefault(),
		DryRun:         req.DryRun,
		RowNumbers:     req.RowNumbers,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Import completed", report.Truncated(h.cfg.MaxErrorsShown))
}

// ApplyFile imports every row of the original upload
func (h *ImportHandler) ApplyFile(c *gin.Context) {
	var form request.ApplyFileForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "Invalid form: "+err.Error())
		return
	}
	var mapping importer.ColumnMapping
	if err := json.Unmarshal([]byte(form.ColumnMapping), &mapping); err != nil {
		response.BadRequest(c, "column_mapping must be a JSON object of field to column index")
		return
	}

	file, filename, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	report, err := h.importService.ApplyFile(c.Request.Context(), file, filename, mapping, service.ApplyOptions{
		SkipDuplicates: form.SkipDuplicates == nil || *form.SkipDuplicates,
		DryRun:         form.DryRun,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Import completed", report.Truncated(h.cfg.MaxErrorsShown))
}

// ErrorsCSV dry-runs an apply and downloads every row error as CSV
func (h *ImportHandler) ErrorsCSV(c *gin.Context) {
	var req request.ApplyImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	report, err := h.importService.ApplyRows(c.Request.Context(), req.ColumnMapping, req.Rows, service.ApplyOptions{
		SkipDuplicates: req.SkipDuplicatesOrDefault(),
		DryRun:         true,
		RowNumbers:     req.RowNumbers,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	name := "import-errors-" + time.Now().UTC().Format("20060102-150405") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := report.WriteErrorsCSV(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// openUpload returns the "file" part, writing the error response itself
// when it is missing or too large.
func (h *ImportHandler) openUpload(c *gin.Context) (multipart.File, string, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return nil, "", false
	}
	if h.cfg.MaxFileSize > 0 && fh.Size > h.cfg.MaxFileSize {
		response.ErrorWithCode(c, http.StatusRequestEntityTooLarge, "File is larger than "+strconv.FormatInt(h.cfg.MaxFileSize, 10)+" bytes")
		return nil, "", false
	}

	file, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "Failed to read uploaded file")
		return nil, "", false
	}
	return file, fh.Filename, true
}
