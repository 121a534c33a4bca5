package tally

import (
	"fmt"

	"tallybridge/internal/domain"
	"tallybridge/internal/validator"
)

// BankGenerator converts an extracted bank statement into a single combined
// import document: the Suspense counter-ledger master followed by one
// two-entry Receipt or Payment voucher per statement row. Every voucher posts
// against Suspense; classifying the counter-side is manual post-import work.
type BankGenerator struct {
	run domain.RunContext
	val *validator.Validator
}

// NewBankGenerator creates a bank-statement generator for one run context.
func NewBankGenerator(run domain.RunContext, val *validator.Validator) *BankGenerator {
	return &BankGenerator{run: run, val: val}
}

// ValidateStructure checks the batch without generating.
func (g *BankGenerator) ValidateStructure(txns []domain.BankTransaction) domain.ValidationResult {
	return g.val.ValidateBankBatch(g.run, txns)
}

// Generate revalidates and emits the combined masters-and-vouchers XML.
// Rows with neither side populated are skipped (the validator has already
// warned about them).
func (g *BankGenerator) Generate(txns []domain.BankTransaction) ([]byte, error) {
	if res := g.ValidateStructure(txns); !res.Valid {
		return nil, &domain.BatchValidationError{Result: res}
	}

	messages := make([]tallyMessage, 0, len(txns)+1)
	messages = append(messages, tallyMessage{
		UDFNS: tallyUDFNS,
		Ledger: &ledgerNode{
			Name:     SuspenseLedgerName,
			Action:   "Create",
			NameList: nameList{Name: SuspenseLedgerName},
			Parent:   groupSuspense,
		},
	})

	for i := range txns {
		t := &txns[i]
		if t.DebitAmount.IsZero() && t.CreditAmount.IsZero() {
			continue
		}
		voucher, err := g.buildVoucher(i, t)
		if err != nil {
			return nil, err
		}
		messages = append(messages, tallyMessage{UDFNS: tallyUDFNS, Voucher: voucher})
	}

	return marshalEnvelope(newEnvelope(reportVouchers, g.run.CompanyName, messages))
}

// buildVoucher maps one statement row to a two-entry voucher. A statement
// debit is money leaving the account, a Payment crediting the bank ledger;
// a statement credit is money arriving, a Receipt debiting it. Suspense
// always takes the opposite side.
func (g *BankGenerator) buildVoucher(row int, t *domain.BankTransaction) (*voucherNode, error) {
	var (
		vchType domain.VoucherType
		entries []ledgerEntry
		amount  = t.CreditAmount
	)
	if t.DebitAmount.IsPositive() {
		vchType = domain.VoucherTypePayment
		amount = t.DebitAmount
		entries = []ledgerEntry{
			debitEntry(SuspenseLedgerName, amount),
			creditEntry(g.run.BankLedgerName, amount),
		}
	} else {
		vchType = domain.VoucherTypeReceipt
		entries = []ledgerEntry{
			debitEntry(g.run.BankLedgerName, amount),
			creditEntry(SuspenseLedgerName, amount),
		}
	}

	sum, err := entrySum(entries)
	if err != nil {
		return nil, err
	}
	if !sum.IsZero() {
		return nil, fmt.Errorf("%w: statement row %d sums to %s", domain.ErrUnbalancedVoucher, row, sum)
	}

	return &voucherNode{
		RemoteID:        voucherRemoteID(g.run.CompanyName, "bank", g.run.BankLedgerName, fmt.Sprintf("%d", row), t.Date, t.Narration),
		VchType:         string(vchType),
		Action:          "Create",
		Date:            tallyDate(t.Date),
		VoucherTypeName: string(vchType),
		PartyLedgerName: g.run.BankLedgerName,
		Narration:       t.Narration,
		Entries:         entries,
	}, nil
}
