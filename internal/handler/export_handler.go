package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tallybridge/internal/domain"
	"tallybridge/internal/export"
)

// ExportHandler handles spreadsheet export endpoints.
type ExportHandler struct {
	maxUploadBytes int64
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(maxUploadMB int64) *ExportHandler {
	return &ExportHandler{maxUploadBytes: maxUploadMB << 20}
}

// Transactions handles POST /api/v1/export/transactions?format=xlsx|csv
// Body: JSON array of normalized transactions (as returned by a convert
// call). Responds with the file as an attachment.
func (h *ExportHandler) Transactions(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		RespondError(c, http.StatusBadRequest, "UNSUPPORTED_FORMAT", "unsupported export format; allowed: csv, xlsx")
		return
	}
	company := c.DefaultQuery("company", "export")

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	var txns []domain.NormalizedTransaction
	if err := c.ShouldBindJSON(&txns); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_JSON", "request body must be a JSON array of transactions")
		return
	}
	if len(txns) == 0 {
		RespondError(c, http.StatusBadRequest, "EMPTY_BATCH", "no transactions to export")
		return
	}

	filename := export.BuildFilename(company, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if format == "xlsx" {
		var buf bytes.Buffer
		if err := export.WriteWorkbook(&buf, txns); err != nil {
			HandleError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
		return
	}

	var buf bytes.Buffer
	_, _ = buf.Write(export.BOM)
	w := export.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		HandleError(c, err)
		return
	}
	if err := w.WriteTransactions(txns); err != nil {
		HandleError(c, err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
