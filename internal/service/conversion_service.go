package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"tallybridge/internal/domain"
	"tallybridge/internal/gst"
	"tallybridge/internal/gstr"
	"tallybridge/internal/party"
	"tallybridge/internal/tally"
	"tallybridge/internal/validator"
)

// ConvertReturnInput is the DTO for converting one GST return document.
type ConvertReturnInput struct {
	Run        domain.RunContext
	ReturnType domain.ReturnType
	Payload    []byte
}

// ConvertReturnOutput carries the generated documents plus everything a
// caller needs to review the run.
type ConvertReturnOutput struct {
	MastersXML   []byte                         `json:"-"`
	VouchersXML  []byte                         `json:"-"`
	Transactions []domain.NormalizedTransaction `json:"transactions"`
	Parties      []*domain.PartySummary         `json:"parties"`
	Validation   domain.ValidationResult        `json:"validation"`
	Warnings     []string                       `json:"warnings"`
}

// BatchDocument is one document of a multi-document conversion run.
type BatchDocument struct {
	Name    string
	Payload []byte
}

// BatchFailure records one document that could not be parsed. Failures are
// per-document: one bad file never poisons the rest of the batch.
type BatchFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ConvertBatchOutput is the combined result of a multi-document run.
type ConvertBatchOutput struct {
	MastersXML   []byte                         `json:"-"`
	VouchersXML  []byte                         `json:"-"`
	Transactions []domain.NormalizedTransaction `json:"transactions"`
	Parties      []*domain.PartySummary         `json:"parties"`
	Validation   domain.ValidationResult        `json:"validation"`
	Warnings     []string                       `json:"warnings"`
	Failed       []BatchFailure                 `json:"failed,omitempty"`
}

// ConversionService defines the GST return conversion contract.
type ConversionService interface {
	ConvertReturn(ctx context.Context, input *ConvertReturnInput) (*ConvertReturnOutput, error)
	ConvertBatch(ctx context.Context, run domain.RunContext, returnType domain.ReturnType, docs []BatchDocument) (*ConvertBatchOutput, error)
	PreviewReturn(ctx context.Context, input *ConvertReturnInput) (*ConvertReturnOutput, error)
}

type conversionService struct {
	validator   *validator.Validator
	concurrency int
}

// NewConversionService creates a new ConversionService implementation.
// concurrency bounds how many batch documents are parsed at once.
func NewConversionService(v *validator.Validator, concurrency int) ConversionService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &conversionService{validator: v, concurrency: concurrency}
}

// resolveRun fills CompanyStateCode from the state name when the caller
// supplied only the name. Validation reports the missing-state case; here an
// unresolvable name just leaves the code empty.
func resolveRun(run domain.RunContext) domain.RunContext {
	if run.CompanyStateCode == "" && run.CompanyState != "" {
		if code, err := gst.StateCodeFor(run.CompanyState); err == nil {
			run.CompanyStateCode = code
		}
	}
	return run
}

func (s *conversionService) ConvertReturn(ctx context.Context, input *ConvertReturnInput) (*ConvertReturnOutput, error) {
	out, err := s.PreviewReturn(ctx, input)
	if err != nil {
		return nil, err
	}
	run := resolveRun(input.Run)
	direction := input.ReturnType.Direction()

	masters, err := tally.NewMastersGenerator(run, s.validator).Generate(out.Transactions, direction)
	if err != nil {
		return nil, err
	}
	vouchers, err := tally.NewVouchersGenerator(run, s.validator).Generate(out.Transactions, direction)
	if err != nil {
		return nil, err
	}

	out.MastersXML = masters
	out.VouchersXML = vouchers
	log.Printf("conversion: %s, %d transactions, %d parties, %d warnings",
		input.ReturnType, len(out.Transactions), len(out.Parties), len(out.Warnings))
	return out, nil
}

// PreviewReturn parses and validates without generating XML, so a caller can
// show the user what a conversion would produce.
func (s *conversionService) PreviewReturn(ctx context.Context, input *ConvertReturnInput) (*ConvertReturnOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	run := resolveRun(input.Run)

	result, err := gstr.Parse(input.ReturnType, input.Payload, run.CompanyStateCode)
	if err != nil {
		return nil, err
	}

	validation := s.validator.ValidateGSTBatch(run, result.Transactions)
	return &ConvertReturnOutput{
		Transactions: result.Transactions,
		Parties:      party.Sorted(party.Aggregate(result.Transactions)),
		Validation:   validation,
		Warnings:     result.Warnings,
	}, nil
}

// ConvertBatch parses documents concurrently, drops the ones that fail with a
// per-document error, and generates one combined masters/vouchers pair from
// everything that parsed. All documents must share one return type; mixing
// sales and purchase flows in one import makes no accounting sense.
func (s *conversionService) ConvertBatch(ctx context.Context, run domain.RunContext, returnType domain.ReturnType, docs []BatchDocument) (*ConvertBatchOutput, error) {
	if !returnType.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedReturn, returnType)
	}
	run = resolveRun(run)

	type docResult struct {
		index  int
		parsed *gstr.Result
		err    error
	}

	results := make([]docResult, len(docs))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sem <- struct{}{} // acquire
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }() // release

			parsed, err := gstr.Parse(returnType, docs[i].Payload, run.CompanyStateCode)
			results[i] = docResult{index: i, parsed: parsed, err: err}
		}(i)
	}
	wg.Wait()

	out := &ConvertBatchOutput{}
	parties := make(map[string]*domain.PartySummary)
	for i, res := range results {
		if res.err != nil {
			out.Failed = append(out.Failed, BatchFailure{Name: docs[i].Name, Error: res.err.Error()})
			log.Printf("conversion batch: document %q failed: %v", docs[i].Name, res.err)
			continue
		}
		for _, w := range res.parsed.Warnings {
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s: %s", docs[i].Name, w))
		}
		out.Transactions = append(out.Transactions, res.parsed.Transactions...)
		party.Merge(parties, party.Aggregate(res.parsed.Transactions))
	}

	// Parse timing is nondeterministic but output order is not: results are
	// collected by document index, and parties are sorted for emission.
	out.Parties = party.Sorted(parties)

	out.Validation = s.validator.ValidateGSTBatch(run, out.Transactions)

	direction := returnType.Direction()
	masters, err := tally.NewMastersGenerator(run, s.validator).Generate(out.Transactions, direction)
	if err != nil {
		return nil, err
	}
	vouchers, err := tally.NewVouchersGenerator(run, s.validator).Generate(out.Transactions, direction)
	if err != nil {
		return nil, err
	}
	out.MastersXML = masters
	out.VouchersXML = vouchers

	log.Printf("conversion batch: %d/%d documents, %d transactions, %d parties",
		len(docs)-len(out.Failed), len(docs), len(out.Transactions), len(out.Parties))
	return out, nil
}
