package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"tallybridge/internal/domain"
	"tallybridge/internal/tally"
	"tallybridge/internal/validator"
)

// ConvertBankInput is the DTO for converting one extracted bank statement.
// Payload is the JSON array of rows the extraction collaborator produced.
type ConvertBankInput struct {
	Run     domain.RunContext
	Payload []byte
}

// ConvertBankOutput carries the combined import document plus the review
// material for the run.
type ConvertBankOutput struct {
	XML          []byte                   `json:"-"`
	Transactions []domain.BankTransaction `json:"transactions"`
	Validation   domain.ValidationResult  `json:"validation"`
}

// BankService defines the bank-statement conversion contract.
type BankService interface {
	Convert(ctx context.Context, input *ConvertBankInput) (*ConvertBankOutput, error)
	Preview(ctx context.Context, input *ConvertBankInput) (*ConvertBankOutput, error)
}

type bankService struct {
	validator *validator.Validator
}

// NewBankService creates a new BankService implementation.
func NewBankService(v *validator.Validator) BankService {
	return &bankService{validator: v}
}

func (s *bankService) Convert(ctx context.Context, input *ConvertBankInput) (*ConvertBankOutput, error) {
	out, err := s.Preview(ctx, input)
	if err != nil {
		return nil, err
	}

	xml, err := tally.NewBankGenerator(input.Run, s.validator).Generate(out.Transactions)
	if err != nil {
		return nil, err
	}
	out.XML = xml
	log.Printf("bank conversion: %d rows, %d warnings", len(out.Transactions), len(out.Validation.Warnings))
	return out, nil
}

// Preview parses and validates without generating XML.
func (s *bankService) Preview(ctx context.Context, input *ConvertBankInput) (*ConvertBankOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var txns []domain.BankTransaction
	if err := json.Unmarshal(input.Payload, &txns); err != nil {
		return nil, fmt.Errorf("parsing bank statement rows: %w", err)
	}

	return &ConvertBankOutput{
		Transactions: txns,
		Validation:   s.validator.ValidateBankBatch(input.Run, txns),
	}, nil
}
