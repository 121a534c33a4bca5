package domain

import (
	"strings"
	"time"
)

// dateFormats are the date spellings the GST portal and the statement
// extractors are known to emit.
var dateFormats = []string{
	"02-01-2006",
	"02/01/2006",
	"2006-01-02",
	"02 Jan 2006",
	"2 Jan 2006",
}

// ParseDate parses a transaction date in any of the known spellings. The
// second return is false when the value matches none of them.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, f := range dateFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
