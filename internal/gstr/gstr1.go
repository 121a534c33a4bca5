package gstr

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"tallybridge/internal/domain"
)

// GSTR-1 JSON shape as exported by the GST portal offline tool: top-level
// gstin/fp markers, b2b counterparty blocks with nested invoices and rated
// line items, and b2cs summary rows for unregistered buyers.
type gstr1Doc struct {
	GSTIN *string     `json:"gstin"`
	FP    *string     `json:"fp"`
	B2B   []ctinInvs  `json:"b2b"`
	B2CS  []gstr1B2CS `json:"b2cs"`
}

// ctinInvs is one counterparty block: GSTIN plus its invoices. Shared by
// GSTR-1 and GSTR-2A, which use the same b2b nesting.
type ctinInvs struct {
	Ctin string   `json:"ctin"`
	Inv  []b2bInv `json:"inv"`
}

type b2bInv struct {
	Inum string    `json:"inum"`
	Idt  string    `json:"idt"`
	Val  float64   `json:"val"`
	Pos  string    `json:"pos"`
	Itms []b2bItem `json:"itms"`
}

type b2bItem struct {
	Num    int `json:"num"`
	ItmDet struct {
		Rt    float64 `json:"rt"`
		Txval float64 `json:"txval"`
		Iamt  float64 `json:"iamt"`
		Camt  float64 `json:"camt"`
		Samt  float64 `json:"samt"`
		Csamt float64 `json:"csamt"`
	} `json:"itm_det"`
}

type gstr1B2CS struct {
	SplyTy string  `json:"sply_ty"`
	Rt     float64 `json:"rt"`
	Pos    string  `json:"pos"`
	Txval  float64 `json:"txval"`
	Iamt   float64 `json:"iamt"`
	Camt   float64 `json:"camt"`
	Samt   float64 `json:"samt"`
	Csamt  float64 `json:"csamt"`
}

func parseGSTR1(raw []byte, companyStateCode string) (*Result, error) {
	keys, err := topLevelKeys(raw)
	if err != nil {
		return nil, err
	}
	var doc gstr1Doc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding GSTR-1 document: %w", err)
	}
	if doc.GSTIN == nil || doc.FP == nil {
		return nil, &domain.SchemaMismatchError{ReturnType: domain.ReturnTypeGSTR1, KeyPath: "gstin/fp"}
	}
	if _, ok := keys["b2b"]; !ok {
		if _, okB2CS := keys["b2cs"]; !okB2CS {
			return nil, &domain.SchemaMismatchError{ReturnType: domain.ReturnTypeGSTR1, KeyPath: "b2b"}
		}
	}

	res := &Result{}
	walkB2B(domain.ReturnTypeGSTR1, doc.B2B, companyStateCode, res)

	fp := ""
	if doc.FP != nil {
		fp = *doc.FP
	}
	for i, row := range doc.B2CS {
		ref := fmt.Sprintf("b2cs[%d]", i)
		txn, warns := assemble(domain.ReturnTypeGSTR1, companyStateCode,
			"", "", "", periodDate(fp), row.Pos, ref, lineAmounts{
				Rate:    decimal.NewFromFloat(row.Rt),
				Taxable: decimal.NewFromFloat(row.Txval),
				IGST:    decimal.NewFromFloat(row.Iamt),
				CGST:    decimal.NewFromFloat(row.Camt),
				SGST:    decimal.NewFromFloat(row.Samt),
				Cess:    decimal.NewFromFloat(row.Csamt),
			})
		res.Transactions = append(res.Transactions, txn)
		res.Warnings = append(res.Warnings, warns...)
	}
	return res, nil
}

// walkB2B traverses counterparty → invoice → line item and appends one
// normalized transaction per line item. Used by GSTR-1 and GSTR-2A.
func walkB2B(rt domain.ReturnType, blocks []ctinInvs, companyStateCode string, res *Result) {
	for _, block := range blocks {
		for _, inv := range block.Inv {
			for i, item := range inv.Itms {
				ref := fmt.Sprintf("b2b[%s].inv[%s].itms[%d]", block.Ctin, inv.Inum, i)
				txn, warns := assemble(rt, companyStateCode,
					block.Ctin, "", inv.Inum, inv.Idt, inv.Pos, ref, lineAmounts{
						Rate:    decimal.NewFromFloat(item.ItmDet.Rt),
						Taxable: decimal.NewFromFloat(item.ItmDet.Txval),
						IGST:    decimal.NewFromFloat(item.ItmDet.Iamt),
						CGST:    decimal.NewFromFloat(item.ItmDet.Camt),
						SGST:    decimal.NewFromFloat(item.ItmDet.Samt),
						Cess:    decimal.NewFromFloat(item.ItmDet.Csamt),
					})
				res.Transactions = append(res.Transactions, txn)
				res.Warnings = append(res.Warnings, warns...)
			}
		}
	}
}

// topLevelKeys decodes just the top-level object keys so section-marker
// presence can be distinguished from an empty section.
func topLevelKeys(raw []byte) (map[string]json.RawMessage, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("decoding return document: %w", err)
	}
	return keys, nil
}
