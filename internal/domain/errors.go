package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownState      = errors.New("unknown state name")
	ErrUnknownStateCode  = errors.New("unknown state code")
	ErrValidationFailed  = errors.New("batch validation failed")
	ErrUnbalancedVoucher = errors.New("voucher entries do not sum to zero")
	ErrEmptyBatch        = errors.New("no transactions to process")
	ErrUnsupportedReturn = errors.New("unsupported GST return type")
)

// BatchValidationError carries the full validation report of a rejected
// batch so every blocking error reaches the caller as a discrete message,
// never just the first one.
type BatchValidationError struct {
	Result ValidationResult
}

func (e *BatchValidationError) Error() string {
	return fmt.Sprintf("%v: %d error(s)", ErrValidationFailed, len(e.Result.Errors))
}

func (e *BatchValidationError) Unwrap() error { return ErrValidationFailed }

// SchemaMismatchError means an uploaded document does not match the expected
// return-type shape. It names the offending key path so the caller can tell
// "wrong file uploaded" apart from "no transactions this period".
type SchemaMismatchError struct {
	ReturnType ReturnType
	KeyPath    string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s: document does not match expected schema (missing or invalid %q)", e.ReturnType, e.KeyPath)
}

// MalformedGSTINError means a registration number is not a valid 15-character
// GSTIN or carries an unknown state-code prefix. Surfaced as a per-record
// warning during batch processing, a hard error from the resolver API.
type MalformedGSTINError struct {
	GSTIN  string
	Reason string
}

func (e *MalformedGSTINError) Error() string {
	return fmt.Sprintf("malformed GSTIN %q: %s", e.GSTIN, e.Reason)
}
