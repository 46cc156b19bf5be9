package extract

import (
	"github.com/snapledger/snapledger/internal/dom"
	"github.com/snapledger/snapledger/internal/models"
	"github.com/snapledger/snapledger/internal/normalize"
)

// structuralStrategy relies on the known marker classes in the rendered
// page: date headers carry the header marker, and each header's transactions
// sit in the following siblings up to the next header. This is the primary
// strategy; it produces records in document traversal order.
type structuralStrategy struct{}

func (structuralStrategy) Name() string {
	return "structural"
}

func (structuralStrategy) Attempt(doc *dom.Document, opts Options) []models.TransactionRecord {
	headers := doc.QueryAll(func(n *dom.Node) bool {
		return n.HasClassContaining(opts.HeaderMarker)
	})

	out := []models.TransactionRecord{}
	dedup := newDeduper()

	for _, header := range headers {
		date := normalize.CanonicalDate(header.Text(), opts.Now)

		for _, sib := range header.FollowingSiblings() {
			if sib.ContainsMarker(opts.HeaderMarker) {
				break
			}
			for _, row := range rowsWithin(sib, opts) {
				rec, ok := recordFromFields(row.TextFields(), date, opts)
				if !ok {
					opts.Logger.Debug().
						Str("strategy", "structural").
						Str("date", date).
						Msg("skipping row: fields did not parse")
					continue
				}
				if dedup.add(rec.ImportID) {
					out = append(out, rec)
				}
			}
		}
	}

	return out
}

// rowsWithin collects the interactive row elements represented by a sibling:
// the sibling itself when it is a row, otherwise its row descendants.
func rowsWithin(n *dom.Node, opts Options) []*dom.Node {
	if isInteractiveRow(n, opts) {
		return []*dom.Node{n}
	}
	return n.Descendants(func(d *dom.Node) bool {
		return isInteractiveRow(d, opts)
	})
}
