package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ReconciliationTolerance is the absolute tolerance (in rupees) applied when
// comparing reported totals against recomputed ones. Portal exports carry
// per-item rounding artifacts, so exact equality cannot be demanded.
var ReconciliationTolerance = decimal.NewFromFloat(0.01)

// NormalizedTransaction is the canonical record every return parser and the
// bank extractor path reduce to, regardless of source schema.
type NormalizedTransaction struct {
	Date          string          `json:"date"`
	PartyName     string          `json:"party_name"`
	PartyGSTIN    string          `json:"party_gstin"`
	InvoiceNumber string          `json:"invoice_number"`
	TaxableValue  decimal.Decimal `json:"taxable_value"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	IGSTAmount    decimal.Decimal `json:"igst_amount"`
	CGSTAmount    decimal.Decimal `json:"cgst_amount"`
	SGSTAmount    decimal.Decimal `json:"sgst_amount"`
	CessAmount    decimal.Decimal `json:"cess_amount"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	InvoiceValue  decimal.Decimal `json:"invoice_value"`
	IsInterstate  bool            `json:"is_interstate"`
	ReturnType    ReturnType      `json:"return_type"`

	// SourceLineRef points back to the raw record for diagnostics, e.g.
	// "b2b[27AAACR5055K1Z7].inv[INV-042].itms[0]". GSTR-2B ITC eligibility
	// flags are appended here rather than modeled numerically.
	SourceLineRef string `json:"source_line_ref,omitempty"`
}

// ReconcilesWithinTolerance reports whether InvoiceValue equals
// TaxableValue + TotalTax within ReconciliationTolerance.
func (t *NormalizedTransaction) ReconcilesWithinTolerance() bool {
	expected := t.TaxableValue.Add(t.TotalTax)
	return t.InvoiceValue.Sub(expected).Abs().LessThanOrEqual(ReconciliationTolerance)
}

// PartyKey is the aggregation key: GSTIN when present, otherwise the
// normalized party name.
func (t *NormalizedTransaction) PartyKey() string {
	if t.PartyGSTIN != "" {
		return t.PartyGSTIN
	}
	return strings.ToUpper(strings.TrimSpace(t.PartyName))
}

// BankTransaction is one row extracted from a bank statement image by the
// external extraction collaborator. At most one of Debit/Credit is non-zero.
type BankTransaction struct {
	Date           string          `json:"date"`
	Narration      string          `json:"narration"`
	DebitAmount    decimal.Decimal `json:"debit_amount"`
	CreditAmount   decimal.Decimal `json:"credit_amount"`
	RunningBalance decimal.Decimal `json:"running_balance,omitempty"`
}

// PartySummary aggregates all transactions of one counterparty. Built fresh
// per processing run, never persisted across runs.
type PartySummary struct {
	DisplayName       string          `json:"display_name"`
	GSTIN             string          `json:"gstin"`
	StateCode         string          `json:"state_code"`
	InvoiceCount      int             `json:"invoice_count"`
	TotalTaxableValue decimal.Decimal `json:"total_taxable_value"`
	TotalTax          decimal.Decimal `json:"total_tax"`
	TotalInvoiceValue decimal.Decimal `json:"total_invoice_value"`
}

// LedgerRequirement is one ledger the masters generator must declare.
// Names are stable across runs for the same key; never randomly suffixed,
// so Tally's alter-if-exists import semantics deduplicate re-imports.
type LedgerRequirement struct {
	Name      string         `json:"name"`
	Kind      LedgerKind     `json:"kind"`
	Parent    string         `json:"parent"`
	TaxType   TaxType        `json:"tax_type,omitempty"`
	Direction TradeDirection `json:"direction,omitempty"`
	GSTIN     string         `json:"gstin,omitempty"`
	StateCode string         `json:"state_code,omitempty"`
}

// BatchStats carries run statistics for reporting alongside validation.
type BatchStats struct {
	TransactionCount  int             `json:"transaction_count"`
	PartyCount        int             `json:"party_count"`
	InterstateCount   int             `json:"interstate_count"`
	TotalTaxableValue decimal.Decimal `json:"total_taxable_value"`
	TotalTax          decimal.Decimal `json:"total_tax"`
	TotalInvoiceValue decimal.Decimal `json:"total_invoice_value"`
	TotalDebits       decimal.Decimal `json:"total_debits"`
	TotalCredits      decimal.Decimal `json:"total_credits"`
}

// ValidationResult is the immutable outcome of validating one batch.
// Errors block generation; warnings never do.
type ValidationResult struct {
	Valid    bool       `json:"valid"`
	Errors   []string   `json:"errors"`
	Warnings []string   `json:"warnings"`
	Stats    BatchStats `json:"stats"`
}

// RunContext is the caller-supplied configuration for one processing run.
type RunContext struct {
	CompanyName      string `json:"company_name"`
	CompanyState     string `json:"company_state"`
	CompanyStateCode string `json:"-"`
	BankLedgerName   string `json:"bank_ledger_name,omitempty"`
}
