package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"tallybridge/internal/domain"
	"tallybridge/internal/party"
)

const (
	sheetTransactions = "Transactions"
	sheetParties      = "Party Summary"
)

var partyColumns = []string{
	"Party",
	"GSTIN",
	"State Code",
	"Invoices",
	"Taxable Value",
	"Total Tax",
	"Invoice Value",
}

// WriteWorkbook renders a batch as an XLSX workbook with a transactions sheet
// and a party-summary sheet, written to w.
func WriteWorkbook(w io.Writer, txns []domain.NormalizedTransaction) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetTransactions); err != nil {
		return fmt.Errorf("rename transactions sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetParties); err != nil {
		return fmt.Errorf("create party sheet: %w", err)
	}

	if err := writeTransactionsSheet(f, txns); err != nil {
		return err
	}
	if err := writePartySheet(f, txns); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTransactionsSheet(f *excelize.File, txns []domain.NormalizedTransaction) error {
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetTransactions, "A1", &header); err != nil {
		return fmt.Errorf("write transactions header: %w", err)
	}

	for i := range txns {
		values := transactionToRow(&txns[i])
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetTransactions, cell, &row); err != nil {
			return fmt.Errorf("write transaction row %d: %w", i, err)
		}
	}
	return nil
}

func writePartySheet(f *excelize.File, txns []domain.NormalizedTransaction) error {
	header := make([]interface{}, len(partyColumns))
	for i, c := range partyColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetParties, "A1", &header); err != nil {
		return fmt.Errorf("write party header: %w", err)
	}

	for i, s := range party.Sorted(party.Aggregate(txns)) {
		row := []interface{}{
			s.DisplayName,
			s.GSTIN,
			s.StateCode,
			s.InvoiceCount,
			s.TotalTaxableValue.StringFixed(2),
			s.TotalTax.StringFixed(2),
			s.TotalInvoiceValue.StringFixed(2),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetParties, cell, &row); err != nil {
			return fmt.Errorf("write party row %d: %w", i, err)
		}
	}
	return nil
}
