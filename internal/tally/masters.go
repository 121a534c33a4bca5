package tally

import (
	"tallybridge/internal/domain"
	"tallybridge/internal/gst"
	"tallybridge/internal/validator"
)

// MastersGenerator emits the ledger/party master document for a batch. The
// document is self-contained: every ledger a voucher of the same batch
// references is declared here. Duplicate handling on re-import is delegated
// to Tally's alter-if-exists semantics, which is why ledger names are stable
// across runs and never suffixed.
type MastersGenerator struct {
	run domain.RunContext
	val *validator.Validator
}

// NewMastersGenerator creates a masters generator for one run context.
func NewMastersGenerator(run domain.RunContext, val *validator.Validator) *MastersGenerator {
	return &MastersGenerator{run: run, val: val}
}

// ValidateStructure checks the batch without generating, so a caller can
// surface errors before committing to output.
func (g *MastersGenerator) ValidateStructure(txns []domain.NormalizedTransaction) domain.ValidationResult {
	return g.val.ValidateGSTBatch(g.run, txns)
}

// Generate revalidates and emits the masters XML. A batch with blocking
// errors fails with domain.ErrValidationFailed; nothing partial is emitted.
func (g *MastersGenerator) Generate(txns []domain.NormalizedTransaction, direction domain.TradeDirection) ([]byte, error) {
	if res := g.ValidateStructure(txns); !res.Valid {
		return nil, &domain.BatchValidationError{Result: res}
	}

	ledgers := RequiredLedgers(txns, direction)
	messages := make([]tallyMessage, 0, len(ledgers))
	for _, req := range ledgers {
		messages = append(messages, tallyMessage{
			UDFNS:  tallyUDFNS,
			Ledger: ledgerMessage(req),
		})
	}

	return marshalEnvelope(newEnvelope(reportAllMasters, g.run.CompanyName, messages))
}

// ledgerMessage renders one requirement as a LEDGER master. Tax ledgers
// carry TAXTYPE so Tally applies its statutory rounding and rate rules;
// party ledgers carry the GSTIN and registration state and are billwise for
// outstanding tracking.
func ledgerMessage(req domain.LedgerRequirement) *ledgerNode {
	node := &ledgerNode{
		Name:     req.Name,
		Action:   "Create",
		NameList: nameList{Name: req.Name},
		Parent:   req.Parent,
	}
	switch req.Kind {
	case domain.LedgerKindParty:
		node.IsBillwiseOn = "Yes"
		node.PartyGSTIN = req.GSTIN
		if req.StateCode != "" {
			if state, err := gst.StateNameFor(req.StateCode); err == nil {
				node.LedStateName = state
			}
		}
	case domain.LedgerKindTax:
		node.TaxType = string(req.TaxType)
		node.GSTApplicable = "Yes"
	case domain.LedgerKindValue:
		node.GSTApplicable = "Yes"
	}
	return node
}
