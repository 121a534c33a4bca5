package handler

import (
	"encoding/base64"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"tallybridge/internal/domain"
	"tallybridge/internal/service"
)

// BankHandler handles bank-statement conversion endpoints.
type BankHandler struct {
	bankService    service.BankService
	maxUploadBytes int64
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(bankService service.BankService, maxUploadMB int64) *BankHandler {
	return &BankHandler{
		bankService:    bankService,
		maxUploadBytes: maxUploadMB << 20,
	}
}

// BankConvertResponse is the JSON body of a successful bank conversion.
type BankConvertResponse struct {
	XML          string                   `json:"xml,omitempty"`
	Transactions []domain.BankTransaction `json:"transactions"`
	Validation   domain.ValidationResult  `json:"validation"`
}

// Convert handles POST /api/v1/convert/bank
// Body: JSON array of extracted statement rows. Query params: company
// (required), bank_ledger (required), preview=1 to validate without
// generating.
func (h *BankHandler) Convert(c *gin.Context) {
	run := domain.RunContext{
		CompanyName:    c.Query("company"),
		CompanyState:   c.Query("state"),
		BankLedgerName: c.Query("bank_ledger"),
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "request body exceeds the maximum allowed size")
		return
	}

	input := &service.ConvertBankInput{Run: run, Payload: payload}

	var out *service.ConvertBankOutput
	if c.Query("preview") == "1" {
		out, err = h.bankService.Preview(c.Request.Context(), input)
	} else {
		out, err = h.bankService.Convert(c.Request.Context(), input)
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, BankConvertResponse{
		XML:          base64.StdEncoding.EncodeToString(out.XML),
		Transactions: out.Transactions,
		Validation:   out.Validation,
	})
}
