package domain

// ReturnType identifies which GST return schema a document was parsed from.
type ReturnType string

const (
	ReturnTypeGSTR1  ReturnType = "gstr1"  // outward supplies (sales)
	ReturnTypeGSTR2A ReturnType = "gstr2a" // auto-drafted inward supplies
	ReturnTypeGSTR2B ReturnType = "gstr2b" // static ITC statement
)

// Valid reports whether rt is a supported return type.
func (rt ReturnType) Valid() bool {
	switch rt {
	case ReturnTypeGSTR1, ReturnTypeGSTR2A, ReturnTypeGSTR2B:
		return true
	}
	return false
}

// Direction maps a return type to its trade direction.
// GSTR-1 is sales; GSTR-2A and GSTR-2B are purchases.
func (rt ReturnType) Direction() TradeDirection {
	if rt == ReturnTypeGSTR1 {
		return DirectionSales
	}
	return DirectionPurchase
}

// TradeDirection distinguishes outward (sales) from inward (purchase) flows.
type TradeDirection string

const (
	DirectionSales    TradeDirection = "sales"
	DirectionPurchase TradeDirection = "purchase"
)

// TaxType is one of the three GST components a tax ledger can collect.
type TaxType string

const (
	TaxTypeIGST TaxType = "IGST"
	TaxTypeCGST TaxType = "CGST"
	TaxTypeSGST TaxType = "SGST"
	TaxTypeCess TaxType = "Cess"
)

// LedgerKind classifies a required ledger for masters generation.
type LedgerKind string

const (
	LedgerKindParty LedgerKind = "party"
	LedgerKindTax   LedgerKind = "tax"
	LedgerKindValue LedgerKind = "value"
	LedgerKindBank  LedgerKind = "bank"
)

// VoucherType is the Tally voucher type a transaction maps to.
type VoucherType string

const (
	VoucherTypePurchase VoucherType = "Purchase"
	VoucherTypeSales    VoucherType = "Sales"
	VoucherTypeReceipt  VoucherType = "Receipt"
	VoucherTypePayment  VoucherType = "Payment"
)
