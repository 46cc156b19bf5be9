package normalize

import (
	"strconv"
	"strings"
)

// minusGlyphs maps the dash variants the page renders for debits (en dash,
// em dash, Unicode minus) onto the ASCII hyphen strconv understands.
var minusGlyphs = strings.NewReplacer(
	"–", "-",
	"—", "-",
	"−", "-",
)

// ParseAmount converts locale-formatted currency text into a signed value in
// major units. Currency symbols and thousands separators are stripped along
// with every other character that is not a digit, hyphen, or decimal point.
// Text with no digits is not a valid amount; callers skip the row rather
// than emit a zero-value record.
func ParseAmount(raw string) (float64, bool) {
	s := minusGlyphs.Replace(raw)

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '-' || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if !strings.ContainsAny(cleaned, "0123456789") {
		return 0, false
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
