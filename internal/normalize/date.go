package normalize

import (
	"regexp"
	"strings"
	"time"
)

// InvalidDate is the deterministic sentinel for labels that match no known
// date grammar. It propagates through identity and export like any other
// canonical string; nothing downstream validates dates.
const InvalidDate = "Invalid Date"

// canonicalLayout is the fixed output form: full English month name,
// zero-padded day, four-digit year, regardless of host locale.
const canonicalLayout = "January 02, 2006"

// dateLayouts covers the free-form phrasings the host page renders.
// Year-carrying layouts come first so a present year is never discarded.
var dateLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"Monday, January 2, 2006",
	"1/2/2006",
	"1/2/06",
	"2006-01-02",
	"Monday, January 2",
	"January 2",
	"Jan 2",
}

var fourDigitYear = regexp.MustCompile(`\b\d{4}\b`)

// CanonicalDate converts a rendered date label ("Today", "Yesterday", or a
// free-form textual date) into the canonical "Month DD, YYYY" form relative
// to now. Labels without a four-digit year get the current year forced,
// which compensates for parsers defaulting the year when it is absent.
func CanonicalDate(label string, now time.Time) string {
	s := strings.TrimSpace(label)
	switch strings.ToLower(s) {
	case "today":
		return now.Format(canonicalLayout)
	case "yesterday":
		return now.AddDate(0, 0, -1).Format(canonicalLayout)
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if !fourDigitYear.MatchString(s) {
			t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
		return t.Format(canonicalLayout)
	}

	return InvalidDate
}
