// Package export renders processed batches as spreadsheet files for review
// outside Tally: CSV for quick diffing, XLSX with a party-summary sheet for
// accountants.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"tallybridge/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row (15 columns).
var columns = []string{
	"Date",
	"Party Name",
	"Party GSTIN",
	"Invoice Number",
	"Taxable Value",
	"Tax Rate",
	"IGST",
	"CGST",
	"SGST",
	"Cess",
	"Total Tax",
	"Invoice Value",
	"Interstate",
	"Return Type",
	"Source Ref",
}

// Writer wraps csv.Writer for exporting normalized transactions as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the 15-column header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteTransactions converts a batch to CSV rows and writes them.
func (w *Writer) WriteTransactions(txns []domain.NormalizedTransaction) error {
	for i := range txns {
		if err := w.csv.Write(transactionToRow(&txns[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// transactionToRow converts a single transaction to a 15-element string slice.
func transactionToRow(t *domain.NormalizedTransaction) []string {
	row := make([]string, len(columns))
	row[0] = t.Date
	row[1] = t.PartyName
	row[2] = t.PartyGSTIN
	row[3] = t.InvoiceNumber
	row[4] = t.TaxableValue.StringFixed(2)
	row[5] = t.TaxRate.String()
	row[6] = t.IGSTAmount.StringFixed(2)
	row[7] = t.CGSTAmount.StringFixed(2)
	row[8] = t.SGSTAmount.StringFixed(2)
	row[9] = t.CessAmount.StringFixed(2)
	row[10] = t.TotalTax.StringFixed(2)
	row[11] = t.InvoiceValue.StringFixed(2)
	row[12] = formatBool(t.IsInterstate)
	row[13] = string(t.ReturnType)
	row[14] = t.SourceLineRef
	return row
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a company name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_company_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(companyName, ext string) string {
	sanitized := SanitizeFilename(companyName)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
