// Package validator runs the structural checks a batch must pass before XML
// generation is attempted. Errors block generation; warnings are advisory
// and never do.
package validator

import (
	"fmt"

	"tallybridge/internal/domain"
	"tallybridge/internal/gst"
)

// DefaultLargeBatchWarn is the advisory batch-size threshold. Large batches
// are legitimate; the warning only flags a possible duplicate upload of a
// whole period.
const DefaultLargeBatchWarn = 2000

// Validator holds the tunable validation thresholds.
type Validator struct {
	LargeBatchWarn int
}

// New creates a Validator. A non-positive threshold falls back to the
// default.
func New(largeBatchWarn int) *Validator {
	if largeBatchWarn <= 0 {
		largeBatchWarn = DefaultLargeBatchWarn
	}
	return &Validator{LargeBatchWarn: largeBatchWarn}
}

// ValidateGSTBatch checks a normalized return batch plus its run context.
// Per-record anomalies (malformed GSTIN, reconciliation drift, duplicate
// invoice pairs) degrade to warnings; batch and configuration problems are
// blocking errors.
func (v *Validator) ValidateGSTBatch(run domain.RunContext, txns []domain.NormalizedTransaction) domain.ValidationResult {
	var errs, warns []string

	if run.CompanyName == "" {
		errs = append(errs, "company name is required")
	}
	switch {
	case run.CompanyState == "" && run.CompanyStateCode == "":
		errs = append(errs, "company state is required for GST processing")
	case run.CompanyStateCode == "":
		if _, err := gst.StateCodeFor(run.CompanyState); err != nil {
			errs = append(errs, fmt.Sprintf("company state %q is not a recognised state", run.CompanyState))
		}
	}

	if len(txns) == 0 {
		errs = append(errs, domain.ErrEmptyBatch.Error())
	}
	if len(txns) > v.LargeBatchWarn {
		warns = append(warns, fmt.Sprintf("batch has %d transactions (advisory threshold %d); verify this is not a duplicate upload", len(txns), v.LargeBatchWarn))
	}

	seen := make(map[string]bool, len(txns))
	stats := domain.BatchStats{TransactionCount: len(txns)}
	parties := make(map[string]bool, len(txns))

	for i := range txns {
		t := &txns[i]
		ref := t.SourceLineRef
		if ref == "" {
			ref = fmt.Sprintf("record[%d]", i)
		}

		if t.PartyGSTIN != "" {
			if err := gst.ValidateGSTIN(t.PartyGSTIN); err != nil {
				// B2C consumer entries legitimately lack a GSTIN; a present
				// but malformed one is suspicious, not blocking.
				warns = append(warns, fmt.Sprintf("%s: %v", ref, err))
			}
		}

		if t.Date != "" {
			if _, ok := domain.ParseDate(t.Date); !ok {
				warns = append(warns, fmt.Sprintf("%s: unparseable date %q; it will pass through to Tally unchanged", ref, t.Date))
			}
		}

		for _, amt := range []struct {
			name  string
			value interface{ Sign() int }
		}{
			{"taxable value", t.TaxableValue},
			{"IGST", t.IGSTAmount},
			{"CGST", t.CGSTAmount},
			{"SGST", t.SGSTAmount},
			{"cess", t.CessAmount},
		} {
			if amt.value.Sign() < 0 {
				errs = append(errs, fmt.Sprintf("%s: negative %s", ref, amt.name))
			}
		}

		if t.IGSTAmount.IsPositive() && (t.CGSTAmount.IsPositive() || t.SGSTAmount.IsPositive()) {
			errs = append(errs, fmt.Sprintf("%s: IGST and CGST/SGST are both non-zero", ref))
		}

		if !t.ReconcilesWithinTolerance() {
			warns = append(warns, fmt.Sprintf("%s: invoice value %s does not reconcile with taxable %s + tax %s",
				ref, t.InvoiceValue.StringFixed(2), t.TaxableValue.StringFixed(2), t.TotalTax.StringFixed(2)))
		}

		if t.InvoiceNumber != "" {
			dupKey := t.InvoiceNumber + "|" + t.PartyGSTIN
			if seen[dupKey] {
				warns = append(warns, fmt.Sprintf("duplicate invoice %q for party %q; possible duplicate upload", t.InvoiceNumber, t.PartyGSTIN))
			}
			seen[dupKey] = true
		}

		parties[t.PartyKey()] = true
		if t.IsInterstate {
			stats.InterstateCount++
		}
		stats.TotalTaxableValue = stats.TotalTaxableValue.Add(t.TaxableValue)
		stats.TotalTax = stats.TotalTax.Add(t.TotalTax)
		stats.TotalInvoiceValue = stats.TotalInvoiceValue.Add(t.InvoiceValue)
	}
	stats.PartyCount = len(parties)

	return domain.ValidationResult{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warns,
		Stats:    stats,
	}
}

// ValidateBankBatch checks a bank-statement batch plus its run context.
func (v *Validator) ValidateBankBatch(run domain.RunContext, txns []domain.BankTransaction) domain.ValidationResult {
	var errs, warns []string

	if run.CompanyName == "" {
		errs = append(errs, "company name is required")
	}
	if run.BankLedgerName == "" {
		errs = append(errs, "bank ledger name is required for bank statement processing")
	}
	if len(txns) == 0 {
		errs = append(errs, domain.ErrEmptyBatch.Error())
	}
	if len(txns) > v.LargeBatchWarn {
		warns = append(warns, fmt.Sprintf("batch has %d transactions (advisory threshold %d)", len(txns), v.LargeBatchWarn))
	}

	stats := domain.BatchStats{TransactionCount: len(txns)}

	for i := range txns {
		t := &txns[i]
		ref := fmt.Sprintf("row[%d]", i)

		if t.Date == "" {
			warns = append(warns, fmt.Sprintf("%s: missing date", ref))
		} else if _, ok := domain.ParseDate(t.Date); !ok {
			warns = append(warns, fmt.Sprintf("%s: unparseable date %q; it will pass through to Tally unchanged", ref, t.Date))
		}
		if t.DebitAmount.Sign() < 0 || t.CreditAmount.Sign() < 0 {
			errs = append(errs, fmt.Sprintf("%s: negative amount", ref))
		}
		switch {
		case t.DebitAmount.IsPositive() && t.CreditAmount.IsPositive():
			errs = append(errs, fmt.Sprintf("%s: both debit and credit are non-zero", ref))
		case t.DebitAmount.IsZero() && t.CreditAmount.IsZero():
			warns = append(warns, fmt.Sprintf("%s: neither debit nor credit present; row will be skipped", ref))
		}

		stats.TotalDebits = stats.TotalDebits.Add(t.DebitAmount)
		stats.TotalCredits = stats.TotalCredits.Add(t.CreditAmount)
	}

	return domain.ValidationResult{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warns,
		Stats:    stats,
	}
}
