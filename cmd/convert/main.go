// Command convert runs a single conversion offline, without the HTTP server.
// Usage:
//
//	go run ./cmd/convert -type gstr1 -in gstr1_april.json -company "Acme Traders" -state Delhi -out-dir out/
//	go run ./cmd/convert -type bank -in statement.json -company "Acme Traders" -bank-ledger "HDFC Current A/c" -out-dir out/
//
// Writes <in>_masters.xml and <in>_vouchers.xml (or one combined <in>.xml on
// the bank path). Exits non-zero when validation reports blocking errors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"tallybridge/internal/domain"
	"tallybridge/internal/service"
	"tallybridge/internal/validator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		docType    = flag.String("type", "", "document type: gstr1, gstr2a, gstr2b, or bank")
		inPath     = flag.String("in", "", "input JSON file")
		company    = flag.String("company", "", "company name as known to Tally")
		state      = flag.String("state", "", "company state name (required for GST returns)")
		bankLedger = flag.String("bank-ledger", "", "bank ledger name (required for bank statements)")
		outDir     = flag.String("out-dir", ".", "output directory")
	)
	flag.Parse()

	if *docType == "" || *inPath == "" || *company == "" {
		flag.Usage()
		return fmt.Errorf("-type, -in and -company are required")
	}

	payload, err := os.ReadFile(*inPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(*inPath), filepath.Ext(*inPath))
	run := domain.RunContext{
		CompanyName:    *company,
		CompanyState:   *state,
		BankLedgerName: *bankLedger,
	}
	v := validator.New(0)
	ctx := context.Background()

	if *docType == "bank" {
		out, err := service.NewBankService(v).Convert(ctx, &service.ConvertBankInput{Run: run, Payload: payload})
		if err != nil {
			return err
		}
		printFindings(out.Validation.Warnings, nil)

		outPath := filepath.Join(*outDir, base+".xml")
		if err := os.WriteFile(outPath, out.XML, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		log.Printf("wrote %s (%d rows)", outPath, len(out.Transactions))
		return nil
	}

	returnType := domain.ReturnType(strings.ToLower(*docType))
	if !returnType.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedReturn, *docType)
	}

	svc := service.NewConversionService(v, 1)
	out, err := svc.ConvertReturn(ctx, &service.ConvertReturnInput{
		Run:        run,
		ReturnType: returnType,
		Payload:    payload,
	})
	if err != nil {
		var vErr *domain.BatchValidationError
		if errors.As(err, &vErr) {
			for _, e := range vErr.Result.Errors {
				log.Printf("error: %s", e)
			}
			printFindings(vErr.Result.Warnings, nil)
		}
		return err
	}
	printFindings(out.Validation.Warnings, out.Warnings)

	mastersPath := filepath.Join(*outDir, base+"_masters.xml")
	vouchersPath := filepath.Join(*outDir, base+"_vouchers.xml")
	if err := os.WriteFile(mastersPath, out.MastersXML, 0o644); err != nil {
		return fmt.Errorf("write masters: %w", err)
	}
	if err := os.WriteFile(vouchersPath, out.VouchersXML, 0o644); err != nil {
		return fmt.Errorf("write vouchers: %w", err)
	}
	log.Printf("wrote %s and %s (%d transactions, %d parties)",
		mastersPath, vouchersPath, len(out.Transactions), len(out.Parties))
	return nil
}

func printFindings(validationWarnings, parseWarnings []string) {
	for _, w := range parseWarnings {
		log.Printf("warning: %s", w)
	}
	for _, w := range validationWarnings {
		log.Printf("warning: %s", w)
	}
}
