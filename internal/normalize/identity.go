package normalize

import (
	"fmt"
	"math"
	"strings"
)

const importIDPrefix = "scraped"

// ImportID derives the stable dedup and reconciliation key for a
// transaction. The amount is converted to rounded minor units so repeated
// runs never disagree over floating-point rendering, and the whole key is
// lowercased with all whitespace removed so cosmetically different
// renderings of the same transaction collapse to one identity.
func ImportID(date string, amount float64, payee string) string {
	cents := int64(math.Round(amount * 100))
	key := fmt.Sprintf("%s-%s-%d-%s", importIDPrefix, date, cents, payee)
	return strings.Join(strings.Fields(strings.ToLower(key)), "")
}
