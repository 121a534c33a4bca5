package handler_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallybridge/internal/config"
	"tallybridge/internal/domain"
	"tallybridge/internal/handler"
	"tallybridge/internal/router"
	"tallybridge/internal/service"
	"tallybridge/internal/validator"
)

const gstr1Doc = `{
	"gstin": "07ABCDE1234F1Z5",
	"fp": "042023",
	"b2b": [
		{
			"ctin": "27AAACR5055K1Z7",
			"inv": [
				{"inum": "INV-001", "idt": "12-04-2023", "val": 1180, "pos": "27",
				 "itms": [{"num": 1, "itm_det": {"rt": 18, "txval": 1000, "iamt": 180, "camt": 0, "samt": 0, "csamt": 0}}]}
			]
		}
	],
	"b2cs": []
}`

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	v := validator.New(0)
	cfg := &config.Config{}
	cfg.Limits.MaxUploadMB = 1

	return router.Setup(
		cfg,
		handler.NewConvertHandler(service.NewConversionService(v, 2), cfg.Limits.MaxUploadMB),
		handler.NewBankHandler(service.NewBankService(v), cfg.Limits.MaxUploadMB),
		handler.NewExportHandler(cfg.Limits.MaxUploadMB),
		handler.NewHealthHandler(),
	)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(t *testing.T, r *gin.Engine, method, url, contentType string, body []byte) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t)
	w, _ := doRequest(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestConvertGST(t *testing.T) {
	r := newTestRouter(t)

	t.Run("raw JSON body converts successfully", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodPost,
			"/api/v1/convert/gst/gstr1?company=Acme+Traders&state=Delhi",
			"application/json", []byte(gstr1Doc))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.True(t, env.Success)

		var resp handler.ConvertResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		require.Len(t, resp.Transactions, 1)
		assert.True(t, resp.Validation.Valid)

		masters, err := base64.StdEncoding.DecodeString(resp.MastersXML)
		require.NoError(t, err)
		assert.Contains(t, string(masters), "All Masters")
	})

	t.Run("multipart file upload converts successfully", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "gstr1.json")
		require.NoError(t, err)
		_, err = part.Write([]byte(gstr1Doc))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		w, env := doRequest(t, r, http.MethodPost,
			"/api/v1/convert/gst/gstr1?company=Acme+Traders&state=Delhi",
			mw.FormDataContentType(), buf.Bytes())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, env.Success)
	})

	t.Run("preview skips generation", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodPost,
			"/api/v1/convert/gst/gstr1?company=Acme+Traders&state=Delhi&preview=1",
			"application/json", []byte(gstr1Doc))
		require.Equal(t, http.StatusOK, w.Code)

		var resp handler.ConvertResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Empty(t, resp.MastersXML)
		assert.Empty(t, resp.VouchersXML)
		require.Len(t, resp.Transactions, 1)
	})

	t.Run("unknown return type is a 400", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodPost,
			"/api/v1/convert/gst/gstr9?company=Acme&state=Delhi",
			"application/json", []byte(gstr1Doc))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "UNSUPPORTED_RETURN_TYPE", env.Error.Code)
	})

	t.Run("schema mismatch is a 422", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodPost,
			"/api/v1/convert/gst/gstr1?company=Acme&state=Delhi",
			"application/json", []byte(`{"nothing": true}`))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "SCHEMA_MISMATCH", env.Error.Code)
	})

	t.Run("missing company is a validation failure", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodPost,
			"/api/v1/convert/gst/gstr1?state=Delhi",
			"application/json", []byte(gstr1Doc))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	})

	t.Run("rejected batch carries every validation error", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodPost,
			"/api/v1/convert/gst/gstr1",
			"application/json", []byte(gstr1Doc))
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "VALIDATION_FAILED", env.Error.Code)

		var res domain.ValidationResult
		require.NoError(t, json.Unmarshal(env.Data, &res))
		assert.False(t, res.Valid)
		require.Len(t, res.Errors, 2)
		assert.Contains(t, res.Errors, "company name is required")
		assert.Contains(t, res.Errors, "company state is required for GST processing")
	})

	t.Run("empty body is a 400", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodPost,
			"/api/v1/convert/gst/gstr1?company=Acme&state=Delhi",
			"application/json", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "EMPTY_BODY", env.Error.Code)
	})
}

func TestConvertBank(t *testing.T) {
	r := newTestRouter(t)

	rows := `[
		{"date": "03-04-2023", "narration": "NEFT FROM CUSTOMER", "credit_amount": "25000"},
		{"date": "05-04-2023", "narration": "RENT APRIL", "debit_amount": "18000"}
	]`

	t.Run("converts rows into the combined document", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodPost,
			"/api/v1/convert/bank?company=Acme+Traders&bank_ledger=HDFC+Current+A%2Fc",
			"application/json", []byte(rows))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp handler.BankConvertResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		require.Len(t, resp.Transactions, 2)

		xml, err := base64.StdEncoding.DecodeString(resp.XML)
		require.NoError(t, err)
		assert.Contains(t, string(xml), "Suspense")
	})

	t.Run("missing bank ledger is a validation failure", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodPost,
			"/api/v1/convert/bank?company=Acme+Traders",
			"application/json", []byte(rows))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	})

	t.Run("malformed JSON is a 400", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodPost,
			"/api/v1/convert/bank?company=Acme&bank_ledger=HDFC",
			"application/json", []byte(`{`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_JSON", env.Error.Code)
	})
}

func TestExportTransactions(t *testing.T) {
	r := newTestRouter(t)

	txns := `[
		{"date": "15-04-2023", "party_name": "Reliance Industries", "party_gstin": "27AAACR5055K1Z7",
		 "invoice_number": "INV-042", "taxable_value": "1000", "tax_rate": "18", "igst_amount": "180",
		 "total_tax": "180", "invoice_value": "1180", "is_interstate": true, "return_type": "gstr2b"}
	]`

	t.Run("csv export is an attachment with a BOM", func(t *testing.T) {
		w, _ := doRequest(t, r, http.MethodPost,
			"/api/v1/export/transactions?format=csv&company=Acme+Traders",
			"application/json", []byte(txns))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Disposition"), "Acme_Traders_")
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
		assert.Contains(t, w.Body.String(), "INV-042")
	})

	t.Run("xlsx export returns a workbook", func(t *testing.T) {
		w, _ := doRequest(t, r, http.MethodPost,
			"/api/v1/export/transactions?format=xlsx&company=Acme",
			"application/json", []byte(txns))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	})

	t.Run("unknown format is a 400", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodPost,
			"/api/v1/export/transactions?format=pdf",
			"application/json", []byte(txns))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "UNSUPPORTED_FORMAT", env.Error.Code)
	})

	t.Run("empty batch is a 400", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodPost,
			"/api/v1/export/transactions?format=csv",
			"application/json", []byte(`[]`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "EMPTY_BATCH", env.Error.Code)
	})
}
