package service

import (
	"context"
	"encoding/xml"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallybridge/internal/domain"
	"tallybridge/internal/validator"
)

func testRun() domain.RunContext {
	return domain.RunContext{CompanyName: "Acme Traders", CompanyState: "Delhi"}
}

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

func gstr1DocFor(ctin, inum string) string {
	return fmt.Sprintf(`{
		"gstin": "07ABCDE1234F1Z5", "fp": "042023",
		"b2b": [{"ctin": %q, "inv": [{"inum": %q, "idt": "12-04-2023", "val": 1180, "pos": "27",
			"itms": [{"num": 1, "itm_det": {"rt": 18, "txval": 1000, "iamt": 180, "camt": 0, "samt": 0, "csamt": 0}}]}]}]
	}`, ctin, inum)
}

func TestConversionService_ConvertReturn(t *testing.T) {
	svc := NewConversionService(validator.New(0), 2)

	t.Run("produces both documents and the review material", func(t *testing.T) {
		out, err := svc.ConvertReturn(context.Background(), &ConvertReturnInput{
			Run:        testRun(),
			ReturnType: domain.ReturnTypeGSTR1,
			Payload:    []byte(gstr1Doc),
		})
		require.NoError(t, err)

		assert.Contains(t, string(out.MastersXML), "All Masters")
		assert.Contains(t, string(out.VouchersXML), `VCHTYPE="Sales"`)
		require.Len(t, out.Transactions, 1)
		require.Len(t, out.Parties, 1)
		assert.True(t, out.Validation.Valid)
	})

	t.Run("state name resolves to code for interstate classification", func(t *testing.T) {
		out, err := svc.ConvertReturn(context.Background(), &ConvertReturnInput{
			Run:        testRun(), // "Delhi", no explicit code
			ReturnType: domain.ReturnTypeGSTR1,
			Payload:    []byte(gstr1Doc),
		})
		require.NoError(t, err)
		assert.True(t, out.Transactions[0].IsInterstate)
	})

	t.Run("schema mismatch surfaces as a typed error", func(t *testing.T) {
		_, err := svc.ConvertReturn(context.Background(), &ConvertReturnInput{
			Run:        testRun(),
			ReturnType: domain.ReturnTypeGSTR1,
			Payload:    []byte(`{"unexpected": true}`),
		})
		var sErr *domain.SchemaMismatchError
		require.ErrorAs(t, err, &sErr)
	})

	t.Run("unknown company state blocks generation", func(t *testing.T) {
		run := testRun()
		run.CompanyState = "Atlantis"
		_, err := svc.ConvertReturn(context.Background(), &ConvertReturnInput{
			Run:        run,
			ReturnType: domain.ReturnTypeGSTR1,
			Payload:    []byte(gstr1Doc),
		})
		require.ErrorIs(t, err, domain.ErrValidationFailed)
	})

	t.Run("canceled context stops before parsing", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := svc.ConvertReturn(ctx, &ConvertReturnInput{
			Run:        testRun(),
			ReturnType: domain.ReturnTypeGSTR1,
			Payload:    []byte(gstr1Doc),
		})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestConversionService_PreviewReturn(t *testing.T) {
	svc := NewConversionService(validator.New(0), 2)

	out, err := svc.PreviewReturn(context.Background(), &ConvertReturnInput{
		Run:        testRun(),
		ReturnType: domain.ReturnTypeGSTR1,
		Payload:    []byte(gstr1Doc),
	})
	require.NoError(t, err)
	assert.Nil(t, out.MastersXML)
	assert.Nil(t, out.VouchersXML)
	require.Len(t, out.Transactions, 1)
	assert.True(t, out.Validation.Valid)
}

func TestConversionService_ConvertBatch(t *testing.T) {
	svc := NewConversionService(validator.New(0), 3)

	t.Run("merges documents and keeps going past a bad one", func(t *testing.T) {
		docs := []BatchDocument{
			{Name: "april-a.json", Payload: []byte(gstr1DocFor("27AAACR5055K1Z7", "INV-001"))},
			{Name: "broken.json", Payload: []byte(`{"nothing": "here"}`)},
			{Name: "april-b.json", Payload: []byte(gstr1DocFor("29KLMNO9012P3Z1", "INV-002"))},
		}

		out, err := svc.ConvertBatch(context.Background(), testRun(), domain.ReturnTypeGSTR1, docs)
		require.NoError(t, err)

		require.Len(t, out.Failed, 1)
		assert.Equal(t, "broken.json", out.Failed[0].Name)
		require.Len(t, out.Transactions, 2)
		require.Len(t, out.Parties, 2)
		assert.NotEmpty(t, out.MastersXML)
		assert.NotEmpty(t, out.VouchersXML)
	})

	t.Run("output order follows document order regardless of parse timing", func(t *testing.T) {
		docs := []BatchDocument{
			{Name: "a.json", Payload: []byte(gstr1DocFor("27AAACR5055K1Z7", "INV-001"))},
			{Name: "b.json", Payload: []byte(gstr1DocFor("29KLMNO9012P3Z1", "INV-002"))},
			{Name: "c.json", Payload: []byte(gstr1DocFor("33PQRST3456U4Z9", "INV-003"))},
		}

		first, err := svc.ConvertBatch(context.Background(), testRun(), domain.ReturnTypeGSTR1, docs)
		require.NoError(t, err)
		second, err := svc.ConvertBatch(context.Background(), testRun(), domain.ReturnTypeGSTR1, docs)
		require.NoError(t, err)

		assert.Equal(t, string(first.VouchersXML), string(second.VouchersXML))
		assert.Equal(t, "INV-001", first.Transactions[0].InvoiceNumber)
		assert.Equal(t, "INV-003", first.Transactions[2].InvoiceNumber)
	})

	t.Run("all documents failing leaves an empty batch error", func(t *testing.T) {
		docs := []BatchDocument{{Name: "broken.json", Payload: []byte(`{}`)}}
		_, err := svc.ConvertBatch(context.Background(), testRun(), domain.ReturnTypeGSTR1, docs)
		require.ErrorIs(t, err, domain.ErrValidationFailed)
	})

	t.Run("unsupported return type rejected up front", func(t *testing.T) {
		_, err := svc.ConvertBatch(context.Background(), testRun(), domain.ReturnType("gstr9"), nil)
		require.ErrorIs(t, err, domain.ErrUnsupportedReturn)
	})
}

func TestBankService(t *testing.T) {
	svc := NewBankService(validator.New(0))
	run := testRun()
	run.BankLedgerName = "HDFC Current A/c"

	payload := []byte(`[
		{"date": "03-04-2023", "narration": "NEFT FROM CUSTOMER", "credit_amount": "25000"},
		{"date": "05-04-2023", "narration": "RENT APRIL", "debit_amount": "18000"}
	]`)

	t.Run("converts rows into a combined document", func(t *testing.T) {
		out, err := svc.Convert(context.Background(), &ConvertBankInput{Run: run, Payload: payload})
		require.NoError(t, err)
		require.Len(t, out.Transactions, 2)
		assert.True(t, out.Validation.Valid)

		var doc struct {
			XMLName xml.Name `xml:"ENVELOPE"`
		}
		require.NoError(t, xml.Unmarshal(out.XML, &doc))
		assert.Contains(t, string(out.XML), "Suspense")
		assert.Contains(t, string(out.XML), "Receipt")
		assert.Contains(t, string(out.XML), "Payment")
	})

	t.Run("invalid JSON is a parse error", func(t *testing.T) {
		_, err := svc.Convert(context.Background(), &ConvertBankInput{Run: run, Payload: []byte(`{`)})
		require.Error(t, err)
	})

	t.Run("missing bank ledger blocks conversion", func(t *testing.T) {
		_, err := svc.Convert(context.Background(), &ConvertBankInput{Run: testRun(), Payload: payload})
		require.ErrorIs(t, err, domain.ErrValidationFailed)
	})
}
