package gst

import (
	"fmt"

	"github.com/shopspring/decimal"

	"tallybridge/internal/domain"
)

var (
	oneHundred = decimal.NewFromInt(100)
	twoHundred = decimal.NewFromInt(200)
)

// Bifurcation is the result of splitting tax on a taxable value.
// Exactly one of IGST or CGST+SGST is non-zero for a non-zero rate.
type Bifurcation struct {
	IGST decimal.Decimal
	CGST decimal.Decimal
	SGST decimal.Decimal
}

// Total returns the summed tax of all components.
func (b Bifurcation) Total() decimal.Decimal {
	return b.IGST.Add(b.CGST).Add(b.SGST)
}

// Bifurcate splits tax on taxable at ratePercent. Interstate supplies carry
// the whole tax as IGST; intrastate supplies split it evenly into CGST and
// SGST (each taxable*rate/200). Amounts are rounded to 2 decimal places with
// round-half-to-even exactly once here and never re-rounded downstream.
func Bifurcate(taxable, ratePercent decimal.Decimal, interstate bool) Bifurcation {
	if ratePercent.IsZero() {
		return Bifurcation{}
	}
	if interstate {
		return Bifurcation{
			IGST: taxable.Mul(ratePercent).Div(oneHundred).RoundBank(2),
		}
	}
	half := taxable.Mul(ratePercent).Div(twoHundred).RoundBank(2)
	return Bifurcation{CGST: half, SGST: half}
}

// formatRate renders a tax rate for ledger names with trailing zeros trimmed
// ("18", "0.25").
func formatRate(rate decimal.Decimal) string {
	return rate.String()
}

// TaxLedgerName derives the canonical tax ledger name for a (direction,
// tax type, rate) triple, e.g. "Input CGST 9%" or "Output IGST 18%".
// Intrastate component ledgers are named by the component rate (half the
// invoice rate), matching how accountants label CGST/SGST heads.
func TaxLedgerName(direction domain.TradeDirection, taxType domain.TaxType, componentRate decimal.Decimal) string {
	prefix := "Input"
	if direction == domain.DirectionSales {
		prefix = "Output"
	}
	return fmt.Sprintf("%s %s %s%%", prefix, taxType, formatRate(componentRate))
}

// ValueLedgerName derives the taxable-value ledger name for a (direction,
// interstate, rate) triple, e.g. "Local Purchase 18%" or "Interstate Sale 5%".
// Every distinct combination becomes its own human-readable ledger because
// Tally has no native notion of a computed tax split.
func ValueLedgerName(direction domain.TradeDirection, interstate bool, rate decimal.Decimal) string {
	scope := "Local"
	if interstate {
		scope = "Interstate"
	}
	kind := "Purchase"
	if direction == domain.DirectionSales {
		kind = "Sale"
	}
	return fmt.Sprintf("%s %s %s%%", scope, kind, formatRate(rate))
}
