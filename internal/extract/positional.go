package extract

import (
	"regexp"
	"strings"

	"github.com/snapledger/snapledger/internal/dom"
	"github.com/snapledger/snapledger/internal/models"
	"github.com/snapledger/snapledger/internal/normalize"
)

// positionalStrategy is the fallback for builds where the structural markers
// are gone. It pairs generic headings with row-like elements purely by
// vertical proximity: each row binds to the nearest heading above it within
// a bounded distance. Output follows document query order, not visual order,
// since association is nearest-above rather than sequential.
type positionalStrategy struct{}

func (positionalStrategy) Name() string {
	return "positional"
}

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true,
}

var threeLetterWord = regexp.MustCompile(`[a-zA-Z]{3,}`)

// plausibleDateHeading filters headings down to those whose text could be a
// date label: "today", "yesterday", any digit, or a word of 3+ letters
// (month names and weekday names all qualify).
func plausibleDateHeading(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "today") || strings.Contains(lower, "yesterday") {
		return true
	}
	if strings.ContainsAny(lower, "0123456789") {
		return true
	}
	return threeLetterWord.MatchString(text)
}

type positionedHeading struct {
	text string
	top  float64
}

func (positionalStrategy) Attempt(doc *dom.Document, opts Options) []models.TransactionRecord {
	var headings []positionedHeading
	for _, h := range doc.QueryAll(func(n *dom.Node) bool { return headingTags[n.Tag()] }) {
		text := h.Text()
		if text == "" || !plausibleDateHeading(text) {
			continue
		}
		headings = append(headings, positionedHeading{text: text, top: h.Top()})
	}
	if len(headings) == 0 {
		return nil
	}

	rows := doc.QueryAll(func(n *dom.Node) bool { return isInteractiveRow(n, opts) })

	out := []models.TransactionRecord{}
	dedup := newDeduper()

	for _, row := range rows {
		label, ok := nearestHeadingAbove(headings, row.Top(), opts.MaxHeaderDistance)
		if !ok {
			opts.Logger.Debug().
				Str("strategy", "positional").
				Float64("top", row.Top()).
				Msg("skipping row: no heading within distance bound")
			continue
		}

		date := normalize.CanonicalDate(label, opts.Now)
		rec, ok := recordFromFields(row.TextFields(), date, opts)
		if !ok {
			continue
		}
		if dedup.add(rec.ImportID) {
			out = append(out, rec)
		}
	}

	return out
}

// nearestHeadingAbove picks the heading with the greatest position that is
// still at or above the row, rejecting the association when the gap exceeds
// the bound: without structural guarantees, a distant heading is more likely
// a section title than the row's date.
func nearestHeadingAbove(headings []positionedHeading, rowTop, maxDistance float64) (string, bool) {
	best := -1
	for i, h := range headings {
		if h.top > rowTop {
			continue
		}
		if best == -1 || h.top > headings[best].top {
			best = i
		}
	}
	if best == -1 || rowTop-headings[best].top > maxDistance {
		return "", false
	}
	return headings[best].text, true
}
