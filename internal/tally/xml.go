// Package tally serializes validated batches into Tally ERP import XML:
// master records (ledgers/parties) and balanced double-entry vouchers. The
// tag vocabulary is Tally's import contract and is fixed; it is covered by
// golden-structure tests and must not be reshaped.
package tally

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tallybridge/internal/domain"
)

const (
	reportAllMasters = "All Masters"
	reportVouchers   = "Vouchers"
	tallyUDFNS       = "TallyUDF"
)

// remoteIDSpace namespaces deterministic voucher GUIDs. Stable ids let
// Tally recognise a re-imported voucher instead of duplicating it.
var remoteIDSpace = uuid.MustParse("9f2d7a46-1c3b-4c6e-9a75-0d8f3b1e5c20")

type envelope struct {
	XMLName xml.Name `xml:"ENVELOPE"`
	Header  header   `xml:"HEADER"`
	Body    envBody  `xml:"BODY"`
}

type header struct {
	TallyRequest string `xml:"TALLYREQUEST"`
}

type envBody struct {
	ImportData importData `xml:"IMPORTDATA"`
}

type importData struct {
	RequestDesc requestDesc `xml:"REQUESTDESC"`
	RequestData requestData `xml:"REQUESTDATA"`
}

type requestDesc struct {
	ReportName      string     `xml:"REPORTNAME"`
	StaticVariables staticVars `xml:"STATICVARIABLES"`
}

type staticVars struct {
	SVCurrentCompany string `xml:"SVCURRENTCOMPANY"`
}

type requestData struct {
	Messages []tallyMessage `xml:"TALLYMESSAGE"`
}

type tallyMessage struct {
	UDFNS   string       `xml:"xmlns:UDF,attr"`
	Ledger  *ledgerNode  `xml:"LEDGER,omitempty"`
	Voucher *voucherNode `xml:"VOUCHER,omitempty"`
}

type ledgerNode struct {
	Name          string   `xml:"NAME,attr"`
	Action        string   `xml:"ACTION,attr"`
	NameList      nameList `xml:"NAME.LIST"`
	Parent        string   `xml:"PARENT"`
	TaxType       string   `xml:"TAXTYPE,omitempty"`
	PartyGSTIN    string   `xml:"PARTYGSTIN,omitempty"`
	LedStateName  string   `xml:"LEDSTATENAME,omitempty"`
	IsBillwiseOn  string   `xml:"ISBILLWISEON,omitempty"`
	GSTApplicable string   `xml:"GSTAPPLICABLE,omitempty"`
}

type nameList struct {
	Name string `xml:"NAME"`
}

type voucherNode struct {
	RemoteID        string        `xml:"REMOTEID,attr,omitempty"`
	VchType         string        `xml:"VCHTYPE,attr"`
	Action          string        `xml:"ACTION,attr"`
	Date            string        `xml:"DATE"`
	VoucherTypeName string        `xml:"VOUCHERTYPENAME"`
	VoucherNumber   string        `xml:"VOUCHERNUMBER,omitempty"`
	PartyLedgerName string        `xml:"PARTYLEDGERNAME,omitempty"`
	Narration       string        `xml:"NARRATION,omitempty"`
	Entries         []ledgerEntry `xml:"ALLLEDGERENTRIES.LIST"`
}

// ledgerEntry is one signed line of a voucher. Tally's sign convention:
// debit entries are "deemed positive" and carry a negative AMOUNT, credit
// entries the reverse. The signed amounts of a voucher sum to zero.
type ledgerEntry struct {
	LedgerName       string `xml:"LEDGERNAME"`
	IsDeemedPositive string `xml:"ISDEEMEDPOSITIVE"`
	Amount           string `xml:"AMOUNT"`
}

func newEnvelope(reportName, companyName string, messages []tallyMessage) envelope {
	return envelope{
		Header: header{TallyRequest: "Import Data"},
		Body: envBody{
			ImportData: importData{
				RequestDesc: requestDesc{
					ReportName:      reportName,
					StaticVariables: staticVars{SVCurrentCompany: companyName},
				},
				RequestData: requestData{Messages: messages},
			},
		},
	}
}

func marshalEnvelope(env envelope) ([]byte, error) {
	out, err := xml.MarshalIndent(env, "", " ")
	if err != nil {
		return nil, fmt.Errorf("marshaling Tally envelope: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func debitEntry(ledgerName string, amount decimal.Decimal) ledgerEntry {
	return ledgerEntry{
		LedgerName:       ledgerName,
		IsDeemedPositive: "Yes",
		Amount:           amount.Neg().StringFixed(2),
	}
}

func creditEntry(ledgerName string, amount decimal.Decimal) ledgerEntry {
	return ledgerEntry{
		LedgerName:       ledgerName,
		IsDeemedPositive: "No",
		Amount:           amount.StringFixed(2),
	}
}

// entrySum recomputes the signed total of a voucher's entries. The amounts
// were formatted with StringFixed(2), so parsing back cannot fail for
// generator-produced entries.
func entrySum(entries []ledgerEntry) (decimal.Decimal, error) {
	var sum decimal.Decimal
	for _, e := range entries {
		amt, err := decimal.NewFromString(e.Amount)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("entry %q has unparseable amount %q", e.LedgerName, e.Amount)
		}
		sum = sum.Add(amt)
	}
	return sum, nil
}

// voucherRemoteID derives a stable GUID for one voucher from its identifying
// fields, so the same input always produces the same id.
func voucherRemoteID(companyName string, parts ...string) string {
	key := companyName + "|" + strings.Join(parts, "|")
	return uuid.NewSHA1(remoteIDSpace, []byte(key)).String()
}

// tallyDate converts the portal's and extractors' common date spellings into
// Tally's YYYYMMDD. Unrecognised spellings pass through unchanged; the
// validator has already warned about them.
func tallyDate(s string) string {
	if t, ok := domain.ParseDate(s); ok {
		return t.Format("20060102")
	}
	return strings.TrimSpace(s)
}
