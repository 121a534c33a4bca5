package tally

import (
	"fmt"

	"github.com/shopspring/decimal"

	"tallybridge/internal/domain"
	"tallybridge/internal/gst"
	"tallybridge/internal/party"
	"tallybridge/internal/validator"
)

// VouchersGenerator emits one voucher per normalized transaction. The
// balance invariant — signed entries summing to exactly zero — is the
// engine's single most important property: an unbalanced voucher is either
// silently dropped by Tally or corrupts the target ledger, so every voucher
// is recomputed and checked before the document is serialized.
type VouchersGenerator struct {
	run domain.RunContext
	val *validator.Validator
}

// NewVouchersGenerator creates a vouchers generator for one run context.
func NewVouchersGenerator(run domain.RunContext, val *validator.Validator) *VouchersGenerator {
	return &VouchersGenerator{run: run, val: val}
}

// ValidateStructure checks the batch without generating.
func (g *VouchersGenerator) ValidateStructure(txns []domain.NormalizedTransaction) domain.ValidationResult {
	return g.val.ValidateGSTBatch(g.run, txns)
}

// Generate revalidates and emits the vouchers XML for the batch.
func (g *VouchersGenerator) Generate(txns []domain.NormalizedTransaction, direction domain.TradeDirection) ([]byte, error) {
	if res := g.ValidateStructure(txns); !res.Valid {
		return nil, &domain.BatchValidationError{Result: res}
	}

	partyNames := partyLedgerNames(txns)
	messages := make([]tallyMessage, 0, len(txns))
	for i := range txns {
		voucher, err := g.buildVoucher(&txns[i], direction, partyNames)
		if err != nil {
			return nil, err
		}
		messages = append(messages, tallyMessage{UDFNS: tallyUDFNS, Voucher: voucher})
	}

	return marshalEnvelope(newEnvelope(reportVouchers, g.run.CompanyName, messages))
}

// buildVoucher assembles the entries for one transaction: the party entry on
// one side, the taxable-value entry and every non-zero tax component on the
// other. One sign convention holds for the whole document: purchases credit
// the party and debit value/tax, sales the reverse.
func (g *VouchersGenerator) buildVoucher(t *domain.NormalizedTransaction, direction domain.TradeDirection, partyNames map[string]string) (*voucherNode, error) {
	partyLedger := partyNames[partyKey(t)]
	if partyLedger == "" {
		partyLedger = party.UnregisteredDisplayName
	}
	valueLedger := gst.ValueLedgerName(direction, t.IsInterstate, t.TaxRate)

	type component struct {
		ledger string
		amount decimal.Decimal
	}
	components := []component{{valueLedger, t.TaxableValue}}
	if t.IGSTAmount.IsPositive() {
		components = append(components, component{gst.TaxLedgerName(direction, domain.TaxTypeIGST, t.TaxRate), t.IGSTAmount})
	}
	if t.CGSTAmount.IsPositive() {
		components = append(components, component{gst.TaxLedgerName(direction, domain.TaxTypeCGST, t.TaxRate.Div(two)), t.CGSTAmount})
	}
	if t.SGSTAmount.IsPositive() {
		components = append(components, component{gst.TaxLedgerName(direction, domain.TaxTypeSGST, t.TaxRate.Div(two)), t.SGSTAmount})
	}
	if t.CessAmount.IsPositive() {
		components = append(components, component{cessLedgerName(direction), t.CessAmount})
	}

	// The party amount is rebuilt from the components rather than taken from
	// InvoiceValue, so the voucher balances by construction even when the
	// source document carried a reconciliation drift (already warned about).
	var partyAmount decimal.Decimal
	for _, c := range components {
		partyAmount = partyAmount.Add(c.amount)
	}

	vchType := domain.VoucherTypePurchase
	entries := make([]ledgerEntry, 0, len(components)+1)
	if direction == domain.DirectionSales {
		vchType = domain.VoucherTypeSales
		entries = append(entries, debitEntry(partyLedger, partyAmount))
		for _, c := range components {
			entries = append(entries, creditEntry(c.ledger, c.amount))
		}
	} else {
		entries = append(entries, creditEntry(partyLedger, partyAmount))
		for _, c := range components {
			entries = append(entries, debitEntry(c.ledger, c.amount))
		}
	}

	sum, err := entrySum(entries)
	if err != nil {
		return nil, err
	}
	if !sum.IsZero() {
		return nil, fmt.Errorf("%w: invoice %q sums to %s", domain.ErrUnbalancedVoucher, t.InvoiceNumber, sum)
	}

	narration := fmt.Sprintf("%s %s against invoice %s", vchType, partyLedger, t.InvoiceNumber)
	if t.InvoiceNumber == "" {
		narration = fmt.Sprintf("%s %s (%s)", vchType, partyLedger, t.ReturnType)
	}

	return &voucherNode{
		RemoteID:        voucherRemoteID(g.run.CompanyName, string(t.ReturnType), t.PartyGSTIN, t.InvoiceNumber, t.SourceLineRef),
		VchType:         string(vchType),
		Action:          "Create",
		Date:            tallyDate(t.Date),
		VoucherTypeName: string(vchType),
		VoucherNumber:   t.InvoiceNumber,
		PartyLedgerName: partyLedger,
		Narration:       narration,
		Entries:         entries,
	}, nil
}

// partyLedgerNames resolves one ledger name per counterparty key through the
// same aggregation the masters generator declares ledgers from. Per-record
// naming would drift from the masters set whenever one GSTIN appears both
// with and without a trade name, leaving vouchers that reference an
// undeclared ledger.
func partyLedgerNames(txns []domain.NormalizedTransaction) map[string]string {
	names := make(map[string]string)
	for key, s := range party.Aggregate(txns) {
		names[key] = s.DisplayName
	}
	return names
}

func partyKey(t *domain.NormalizedTransaction) string {
	if key := t.PartyKey(); key != "" {
		return key
	}
	return party.UnregisteredDisplayName
}
