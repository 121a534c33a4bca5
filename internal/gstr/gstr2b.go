package gstr

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"tallybridge/internal/domain"
)

// GSTR-2B wraps everything under data.docdata and flattens supplier trade
// names and ITC eligibility onto the invoice. The itcavl/rsn flags are
// diagnostic passthrough, carried on SourceLineRef, not part of the numeric
// model.
type gstr2bDoc struct {
	Data *struct {
		GSTIN   string `json:"gstin"`
		RtnPrd  string `json:"rtnprd"`
		DocData *struct {
			B2B []gstr2bSupplier `json:"b2b"`
		} `json:"docdata"`
	} `json:"data"`
}

type gstr2bSupplier struct {
	Ctin  string      `json:"ctin"`
	TrdNm string      `json:"trdnm"`
	Inv   []gstr2bInv `json:"inv"`
}

type gstr2bInv struct {
	Inum   string       `json:"inum"`
	Dt     string       `json:"dt"`
	Val    float64      `json:"val"`
	Pos    string       `json:"pos"`
	ITCAvl string       `json:"itcavl"`
	Rsn    string       `json:"rsn"`
	Items  []gstr2bItem `json:"items"`
}

type gstr2bItem struct {
	Num   int     `json:"num"`
	Rt    float64 `json:"rt"`
	Txval float64 `json:"txval"`
	IGST  float64 `json:"igst"`
	CGST  float64 `json:"cgst"`
	SGST  float64 `json:"sgst"`
	Cess  float64 `json:"cess"`
}

func parseGSTR2B(raw []byte, companyStateCode string) (*Result, error) {
	var doc gstr2bDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding GSTR-2B document: %w", err)
	}
	if doc.Data == nil {
		return nil, &domain.SchemaMismatchError{ReturnType: domain.ReturnTypeGSTR2B, KeyPath: "data"}
	}
	if doc.Data.DocData == nil {
		return nil, &domain.SchemaMismatchError{ReturnType: domain.ReturnTypeGSTR2B, KeyPath: "data.docdata"}
	}
	if doc.Data.DocData.B2B == nil {
		return nil, &domain.SchemaMismatchError{ReturnType: domain.ReturnTypeGSTR2B, KeyPath: "data.docdata.b2b"}
	}

	res := &Result{}
	for _, sup := range doc.Data.DocData.B2B {
		for _, inv := range sup.Inv {
			for i, item := range inv.Items {
				ref := fmt.Sprintf("b2b[%s].inv[%s].items[%d]", sup.Ctin, inv.Inum, i)
				if inv.ITCAvl != "" {
					ref += fmt.Sprintf(" itcavl=%s", inv.ITCAvl)
					if inv.Rsn != "" {
						ref += fmt.Sprintf(" rsn=%s", inv.Rsn)
					}
				}
				txn, warns := assemble(domain.ReturnTypeGSTR2B, companyStateCode,
					sup.Ctin, sup.TrdNm, inv.Inum, inv.Dt, inv.Pos, ref, lineAmounts{
						Rate:    decimal.NewFromFloat(item.Rt),
						Taxable: decimal.NewFromFloat(item.Txval),
						IGST:    decimal.NewFromFloat(item.IGST),
						CGST:    decimal.NewFromFloat(item.CGST),
						SGST:    decimal.NewFromFloat(item.SGST),
						Cess:    decimal.NewFromFloat(item.Cess),
					})
				res.Transactions = append(res.Transactions, txn)
				res.Warnings = append(res.Warnings, warns...)
			}
		}
	}
	return res, nil
}
