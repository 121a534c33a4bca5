// Package gst holds the pure GST arithmetic of the engine: the jurisdiction
// code table, interstate classification, tax bifurcation and the canonical
// ledger naming scheme.
package gst

import (
	"fmt"
	"regexp"
	"strings"

	"tallybridge/internal/domain"
)

// gstinPattern is the full 15-character GSTIN format: 2-digit state code,
// 10-character PAN, entity number, literal Z, check character.
var gstinPattern = regexp.MustCompile(`^\d{2}[A-Z]{5}\d{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// stateNames maps the two-digit GST jurisdiction code to its canonical state
// or union-territory name. Loaded once, read-only for the process lifetime;
// a rate or jurisdiction change is a data edit here, not a code change.
var stateNames = map[string]string{
	"01": "Jammu and Kashmir",
	"02": "Himachal Pradesh",
	"03": "Punjab",
	"04": "Chandigarh",
	"05": "Uttarakhand",
	"06": "Haryana",
	"07": "Delhi",
	"08": "Rajasthan",
	"09": "Uttar Pradesh",
	"10": "Bihar",
	"11": "Sikkim",
	"12": "Arunachal Pradesh",
	"13": "Nagaland",
	"14": "Manipur",
	"15": "Mizoram",
	"16": "Tripura",
	"17": "Meghalaya",
	"18": "Assam",
	"19": "West Bengal",
	"20": "Jharkhand",
	"21": "Odisha",
	"22": "Chhattisgarh",
	"23": "Madhya Pradesh",
	"24": "Gujarat",
	"25": "Daman and Diu",
	"26": "Dadra and Nagar Haveli and Daman and Diu",
	"27": "Maharashtra",
	"28": "Andhra Pradesh (Old)",
	"29": "Karnataka",
	"30": "Goa",
	"31": "Lakshadweep",
	"32": "Kerala",
	"33": "Tamil Nadu",
	"34": "Puducherry",
	"35": "Andaman and Nicobar Islands",
	"36": "Telangana",
	"37": "Andhra Pradesh",
	"38": "Ladakh",
}

// stateCodes is the inverse mapping, keyed by lowercased name.
var stateCodes = func() map[string]string {
	m := make(map[string]string, len(stateNames))
	for code, name := range stateNames {
		m[strings.ToLower(name)] = code
	}
	return m
}()

// StateCodeFor resolves a state name to its two-digit jurisdiction code.
// Matching is case-insensitive. Returns domain.ErrUnknownState when the name
// is not in the table.
func StateCodeFor(name string) (string, error) {
	code, ok := stateCodes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownState, name)
	}
	return code, nil
}

// StateNameFor resolves a two-digit jurisdiction code to its canonical name.
func StateNameFor(code string) (string, error) {
	name, ok := stateNames[code]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownStateCode, code)
	}
	return name, nil
}

// ValidateGSTIN checks the 15-character GSTIN format and that its two-digit
// prefix is a known jurisdiction code.
func ValidateGSTIN(gstin string) error {
	if len(gstin) != 15 {
		return &domain.MalformedGSTINError{GSTIN: gstin, Reason: fmt.Sprintf("expected 15 characters, got %d", len(gstin))}
	}
	if !gstinPattern.MatchString(gstin) {
		return &domain.MalformedGSTINError{GSTIN: gstin, Reason: "does not match GSTIN format"}
	}
	if _, ok := stateNames[gstin[:2]]; !ok {
		return &domain.MalformedGSTINError{GSTIN: gstin, Reason: fmt.Sprintf("unknown state code prefix %q", gstin[:2])}
	}
	return nil
}

// StateCodeOf extracts the jurisdiction code prefix of a GSTIN after
// validating it.
func StateCodeOf(gstin string) (string, error) {
	if err := ValidateGSTIN(gstin); err != nil {
		return "", err
	}
	return gstin[:2], nil
}

// IsInterstate reports whether a counterparty registered under gstin is in a
// different jurisdiction than the company. companyStateCode must be a valid
// two-digit code.
func IsInterstate(companyStateCode, gstin string) (bool, error) {
	if _, ok := stateNames[companyStateCode]; !ok {
		return false, fmt.Errorf("%w: %q", domain.ErrUnknownStateCode, companyStateCode)
	}
	partyCode, err := StateCodeOf(gstin)
	if err != nil {
		return false, err
	}
	return partyCode != companyStateCode, nil
}
