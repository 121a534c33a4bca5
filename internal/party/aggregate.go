// Package party folds normalized transactions into per-counterparty
// summaries. The fold is commutative and associative over addition, so
// record order never affects the result and per-document partial maps can be
// merged safely after concurrent processing.
package party

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"tallybridge/internal/domain"
)

// UnregisteredDisplayName labels entries with neither a GSTIN nor a party
// name (B2C summaries).
const UnregisteredDisplayName = "B2C / Unregistered"

// Aggregate folds transactions into a map keyed by GSTIN, falling back to
// the normalized party name for unregistered entries. Built fresh per run.
func Aggregate(txns []domain.NormalizedTransaction) map[string]*domain.PartySummary {
	out := make(map[string]*domain.PartySummary)
	for i := range txns {
		add(out, &txns[i])
	}
	return out
}

func add(m map[string]*domain.PartySummary, t *domain.NormalizedTransaction) {
	key := t.PartyKey()
	if key == "" {
		key = UnregisteredDisplayName
	}
	s, ok := m[key]
	if !ok {
		s = &domain.PartySummary{
			DisplayName: displayName(t),
			GSTIN:       t.PartyGSTIN,
		}
		if len(t.PartyGSTIN) >= 2 {
			s.StateCode = t.PartyGSTIN[:2]
		}
		m[key] = s
	}
	if s.DisplayName == "" || s.DisplayName == s.GSTIN {
		// A later record may carry the trade name the first one lacked.
		if n := displayName(t); n != "" && n != t.PartyGSTIN {
			s.DisplayName = n
		}
	}
	s.InvoiceCount++
	s.TotalTaxableValue = s.TotalTaxableValue.Add(t.TaxableValue)
	s.TotalTax = s.TotalTax.Add(t.TotalTax)
	s.TotalInvoiceValue = s.TotalInvoiceValue.Add(t.InvoiceValue)
}

func displayName(t *domain.NormalizedTransaction) string {
	if name := strings.TrimSpace(t.PartyName); name != "" {
		return name
	}
	if t.PartyGSTIN != "" {
		return t.PartyGSTIN
	}
	return UnregisteredDisplayName
}

// Merge folds src into dst so partial per-document summaries can be reduced
// into one run-wide map.
func Merge(dst, src map[string]*domain.PartySummary) {
	for key, s := range src {
		d, ok := dst[key]
		if !ok {
			cp := *s
			dst[key] = &cp
			continue
		}
		if (d.DisplayName == "" || d.DisplayName == d.GSTIN) && s.DisplayName != "" {
			d.DisplayName = s.DisplayName
		}
		d.InvoiceCount += s.InvoiceCount
		d.TotalTaxableValue = d.TotalTaxableValue.Add(s.TotalTaxableValue)
		d.TotalTax = d.TotalTax.Add(s.TotalTax)
		d.TotalInvoiceValue = d.TotalInvoiceValue.Add(s.TotalInvoiceValue)
	}
}

// Sorted returns the summaries ordered by display name. Map iteration order
// is undefined, so anything user-visible (reports, XML emission) goes
// through here.
func Sorted(m map[string]*domain.PartySummary) []*domain.PartySummary {
	out := make([]*domain.PartySummary, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].GSTIN < out[j].GSTIN
	})
	return out
}

// Totals sums all party summaries into engine-wide totals.
func Totals(m map[string]*domain.PartySummary) (taxable, tax, invoiceValue decimal.Decimal, invoices int) {
	for _, s := range m {
		taxable = taxable.Add(s.TotalTaxableValue)
		tax = tax.Add(s.TotalTax)
		invoiceValue = invoiceValue.Add(s.TotalInvoiceValue)
		invoices += s.InvoiceCount
	}
	return taxable, tax, invoiceValue, invoices
}
