package tally

import (
	"sort"

	"github.com/shopspring/decimal"

	"tallybridge/internal/domain"
	"tallybridge/internal/gst"
	"tallybridge/internal/party"
)

// Tally account groups the generated ledgers hang under.
const (
	groupSundryCreditors = "Sundry Creditors"
	groupSundryDebtors   = "Sundry Debtors"
	groupDutiesAndTaxes  = "Duties & Taxes"
	groupPurchase        = "Purchase Accounts"
	groupSales           = "Sales Accounts"
	groupSuspense        = "Suspense A/c"

	// SuspenseLedgerName is the fixed counter-ledger of the bank-statement
	// path; classification is deferred to manual post-import review.
	SuspenseLedgerName = "Suspense"
)

var two = decimal.NewFromInt(2)

// RequiredLedgers computes the deduplicated set of ledgers the masters
// document must declare for a batch: one per party, one taxable-value ledger
// per (interstate, rate), and one tax ledger per (tax type, rate) observed.
// Names are a pure function of the key, so re-runs produce identical sets.
func RequiredLedgers(txns []domain.NormalizedTransaction, direction domain.TradeDirection) []domain.LedgerRequirement {
	byName := make(map[string]domain.LedgerRequirement)

	valueGroup := groupPurchase
	partyGroup := groupSundryCreditors
	if direction == domain.DirectionSales {
		valueGroup = groupSales
		partyGroup = groupSundryDebtors
	}

	for _, s := range party.Sorted(party.Aggregate(txns)) {
		byName[s.DisplayName] = domain.LedgerRequirement{
			Name:      s.DisplayName,
			Kind:      domain.LedgerKindParty,
			Parent:    partyGroup,
			Direction: direction,
			GSTIN:     s.GSTIN,
			StateCode: s.StateCode,
		}
	}

	for i := range txns {
		t := &txns[i]

		valueName := gst.ValueLedgerName(direction, t.IsInterstate, t.TaxRate)
		byName[valueName] = domain.LedgerRequirement{
			Name:      valueName,
			Kind:      domain.LedgerKindValue,
			Parent:    valueGroup,
			Direction: direction,
		}

		if t.IGSTAmount.IsPositive() {
			name := gst.TaxLedgerName(direction, domain.TaxTypeIGST, t.TaxRate)
			byName[name] = taxRequirement(name, domain.TaxTypeIGST, direction)
		}
		if t.CGSTAmount.IsPositive() {
			half := t.TaxRate.Div(two)
			name := gst.TaxLedgerName(direction, domain.TaxTypeCGST, half)
			byName[name] = taxRequirement(name, domain.TaxTypeCGST, direction)
		}
		if t.SGSTAmount.IsPositive() {
			half := t.TaxRate.Div(two)
			name := gst.TaxLedgerName(direction, domain.TaxTypeSGST, half)
			byName[name] = taxRequirement(name, domain.TaxTypeSGST, direction)
		}
		if t.CessAmount.IsPositive() {
			name := cessLedgerName(direction)
			byName[name] = taxRequirement(name, domain.TaxTypeCess, direction)
		}
	}

	out := make([]domain.LedgerRequirement, 0, len(byName))
	for _, req := range byName {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func taxRequirement(name string, taxType domain.TaxType, direction domain.TradeDirection) domain.LedgerRequirement {
	return domain.LedgerRequirement{
		Name:      name,
		Kind:      domain.LedgerKindTax,
		Parent:    groupDutiesAndTaxes,
		TaxType:   taxType,
		Direction: direction,
	}
}

// cessLedgerName is flat per direction: cess has no rate-wise ledgers in
// practice, it accumulates in one head for later apportioning.
func cessLedgerName(direction domain.TradeDirection) string {
	if direction == domain.DirectionSales {
		return "Output Cess"
	}
	return "Input Cess"
}
