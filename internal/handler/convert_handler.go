package handler

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tallybridge/internal/domain"
	"tallybridge/internal/service"
)

// ConvertHandler handles GST return conversion endpoints.
type ConvertHandler struct {
	conversionService service.ConversionService
	maxUploadBytes    int64
}

// NewConvertHandler creates a new ConvertHandler. maxUploadMB bounds the
// request body size.
func NewConvertHandler(conversionService service.ConversionService, maxUploadMB int64) *ConvertHandler {
	return &ConvertHandler{
		conversionService: conversionService,
		maxUploadBytes:    maxUploadMB << 20,
	}
}

// ConvertResponse is the JSON body of a successful conversion. The XML
// documents are base64 so the envelope stays valid JSON.
type ConvertResponse struct {
	MastersXML   string                         `json:"masters_xml,omitempty"`
	VouchersXML  string                         `json:"vouchers_xml,omitempty"`
	Transactions []domain.NormalizedTransaction `json:"transactions"`
	Parties      []*domain.PartySummary         `json:"parties"`
	Validation   domain.ValidationResult        `json:"validation"`
	Warnings     []string                       `json:"warnings"`
}

// Convert handles POST /api/v1/convert/gst/:type
// Accepts the raw return JSON as the request body or as a multipart "file"
// part. Query params: company (required), state (required), preview=1 to
// validate without generating.
func (h *ConvertHandler) Convert(c *gin.Context) {
	returnType := domain.ReturnType(strings.ToLower(c.Param("type")))
	if !returnType.Valid() {
		RespondError(c, http.StatusBadRequest, "UNSUPPORTED_RETURN_TYPE", "unsupported GST return type; allowed: gstr1, gstr2a, gstr2b")
		return
	}

	run := domain.RunContext{
		CompanyName:  c.Query("company"),
		CompanyState: c.Query("state"),
	}

	payload, ok := h.readPayload(c)
	if !ok {
		return
	}

	input := &service.ConvertReturnInput{
		Run:        run,
		ReturnType: returnType,
		Payload:    payload,
	}

	var (
		out *service.ConvertReturnOutput
		err error
	)
	if c.Query("preview") == "1" {
		out, err = h.conversionService.PreviewReturn(c.Request.Context(), input)
	} else {
		out, err = h.conversionService.ConvertReturn(c.Request.Context(), input)
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, ConvertResponse{
		MastersXML:   base64.StdEncoding.EncodeToString(out.MastersXML),
		VouchersXML:  base64.StdEncoding.EncodeToString(out.VouchersXML),
		Transactions: out.Transactions,
		Parties:      out.Parties,
		Validation:   out.Validation,
		Warnings:     out.Warnings,
	})
}

// readPayload reads the return document from a multipart "file" part when
// present, otherwise from the raw request body, enforcing the upload limit.
// On failure an error response has already been written.
func (h *ConvertHandler) readPayload(c *gin.Context) ([]byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			RespondError(c, http.StatusBadRequest, "MISSING_FILE", `multipart upload requires a "file" part`)
			return nil, false
		}
		defer func() { _ = file.Close() }()

		payload, err := io.ReadAll(file)
		if err != nil {
			RespondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "uploaded file exceeds the maximum allowed size")
			return nil, false
		}
		return payload, true
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "request body exceeds the maximum allowed size")
		return nil, false
	}
	if len(payload) == 0 {
		RespondError(c, http.StatusBadRequest, "EMPTY_BODY", "request body is empty")
		return nil, false
	}
	return payload, true
}
