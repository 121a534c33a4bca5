package gstr

import (
	"encoding/json"
	"fmt"

	"tallybridge/internal/domain"
)

// GSTR-2A shares the GSTR-1 b2b nesting, keyed by supplier GSTIN instead of
// customer GSTIN. Fields absent in this auto-drafted schema decode to zero
// rather than failing.
type gstr2aDoc struct {
	GSTIN *string    `json:"gstin"`
	FP    *string    `json:"fp"`
	B2B   []ctinInvs `json:"b2b"`
}

func parseGSTR2A(raw []byte, companyStateCode string) (*Result, error) {
	keys, err := topLevelKeys(raw)
	if err != nil {
		return nil, err
	}
	var doc gstr2aDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding GSTR-2A document: %w", err)
	}
	if doc.GSTIN == nil || doc.FP == nil {
		return nil, &domain.SchemaMismatchError{ReturnType: domain.ReturnTypeGSTR2A, KeyPath: "gstin/fp"}
	}
	if _, ok := keys["b2b"]; !ok {
		return nil, &domain.SchemaMismatchError{ReturnType: domain.ReturnTypeGSTR2A, KeyPath: "b2b"}
	}

	res := &Result{}
	walkB2B(domain.ReturnTypeGSTR2A, doc.B2B, companyStateCode, res)
	return res, nil
}
