// Package gstr parses the three GST portal return exports (GSTR-1, GSTR-2A,
// GSTR-2B) into the engine's normalized transaction records. Each schema's
// quirks live in its own file; the record assembly and interstate
// classification they share live here.
package gstr

import (
	"fmt"

	"github.com/shopspring/decimal"

	"tallybridge/internal/domain"
	"tallybridge/internal/gst"
)

// Result is the outcome of parsing one return document. Per-record anomalies
// (malformed GSTIN, portal rounding artifacts) are collected as warnings so
// one bad row never aborts a multi-hundred-row batch.
type Result struct {
	Transactions []domain.NormalizedTransaction
	Warnings     []string
}

type parseFunc func(raw []byte, companyStateCode string) (*Result, error)

var parsers = map[domain.ReturnType]parseFunc{
	domain.ReturnTypeGSTR1:  parseGSTR1,
	domain.ReturnTypeGSTR2A: parseGSTR2A,
	domain.ReturnTypeGSTR2B: parseGSTR2B,
}

// Parse converts a raw return document of the given type into normalized
// transactions. A document that does not carry the return type's expected
// section markers fails with *domain.SchemaMismatchError instead of silently
// returning an empty result.
func Parse(rt domain.ReturnType, raw []byte, companyStateCode string) (*Result, error) {
	p, ok := parsers[rt]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedReturn, rt)
	}
	return p(raw, companyStateCode)
}

// lineAmounts are the monetary fields extracted from one line item, in the
// source document's own bifurcation. Returns report their tax split
// explicitly, so the split is read, not recomputed.
type lineAmounts struct {
	Rate    decimal.Decimal
	Taxable decimal.Decimal
	IGST    decimal.Decimal
	CGST    decimal.Decimal
	SGST    decimal.Decimal
	Cess    decimal.Decimal
}

// classify determines the interstate flag for one record, deterministically:
// a valid counterparty GSTIN wins; otherwise the place-of-supply code;
// otherwise the reported bifurcation (IGST present means interstate).
// A malformed GSTIN degrades to a warning, never a failure.
func classify(companyStateCode, gstin, pos string, amounts lineAmounts, ref string) (interstate bool, warning string) {
	if gstin != "" {
		inter, err := gst.IsInterstate(companyStateCode, gstin)
		if err == nil {
			return inter, ""
		}
		warning = fmt.Sprintf("%s: %v; falling back to place of supply", ref, err)
	}
	if pos != "" {
		if _, err := gst.StateNameFor(pos); err == nil {
			return pos != companyStateCode, warning
		}
	}
	return amounts.IGST.IsPositive(), warning
}

// assemble builds one NormalizedTransaction from an extracted line item,
// attaching a reconciliation warning when the reported tax disagrees with
// the recomputed split beyond tolerance (portal exports occasionally carry
// rounding artifacts, so this is advisory, not fatal).
func assemble(rt domain.ReturnType, companyStateCode, gstin, partyName, invoiceNo, date, pos, ref string, amounts lineAmounts) (domain.NormalizedTransaction, []string) {
	var warnings []string

	interstate, w := classify(companyStateCode, gstin, pos, amounts, ref)
	if w != "" {
		warnings = append(warnings, w)
	}

	totalTax := amounts.IGST.Add(amounts.CGST).Add(amounts.SGST).Add(amounts.Cess)
	expected := gst.Bifurcate(amounts.Taxable, amounts.Rate, interstate)
	if expected.Total().Add(amounts.Cess).Sub(totalTax).Abs().GreaterThan(domain.ReconciliationTolerance) {
		warnings = append(warnings, fmt.Sprintf(
			"%s: reported tax %s differs from recomputed %s at rate %s%%",
			ref, totalTax.StringFixed(2), expected.Total().Add(amounts.Cess).StringFixed(2), amounts.Rate))
	}

	return domain.NormalizedTransaction{
		Date:          date,
		PartyName:     partyName,
		PartyGSTIN:    gstin,
		InvoiceNumber: invoiceNo,
		TaxableValue:  amounts.Taxable,
		TaxRate:       amounts.Rate,
		IGSTAmount:    amounts.IGST,
		CGSTAmount:    amounts.CGST,
		SGSTAmount:    amounts.SGST,
		CessAmount:    amounts.Cess,
		TotalTax:      totalTax,
		InvoiceValue:  amounts.Taxable.Add(totalTax).RoundBank(2),
		IsInterstate:  interstate,
		ReturnType:    rt,
		SourceLineRef: ref,
	}, warnings
}

// periodDate turns a return period "MMYYYY" into a first-of-month date in
// the portal's DD-MM-YYYY convention, for records that carry no invoice date
// of their own (B2C summaries).
func periodDate(fp string) string {
	if len(fp) != 6 {
		return ""
	}
	return "01-" + fp[:2] + "-" + fp[2:]
}
