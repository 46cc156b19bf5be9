package extract

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/snapledger/snapledger/internal/dom"
	"github.com/snapledger/snapledger/internal/models"
	"github.com/snapledger/snapledger/internal/normalize"
)

// Defaults for the page markers and the positional tuning knob. The marker
// strings match the host page's current build; the distance bound was tuned
// against that one layout and is not assumed to generalize, hence all of
// them live on Options instead of being hard-coded in the strategies.
const (
	DefaultHeaderMarker      = "transaction-date-header"
	DefaultRowMarker         = "transaction-row"
	DefaultNotesSeparator    = " / "
	DefaultMaxHeaderDistance = 400.0
)

// Options tunes one extraction run.
type Options struct {
	// HeaderMarker is the class substring identifying date-header elements.
	HeaderMarker string
	// RowMarker is the class substring identifying transaction rows.
	RowMarker string
	// NotesSeparator joins multiple interior note fields.
	NotesSeparator string
	// MaxHeaderDistance bounds how far below a heading a row may sit before
	// the positional strategy refuses to associate them.
	MaxHeaderDistance float64
	// Now anchors "Today"/"Yesterday" resolution; zero means time.Now().
	Now time.Time
	// Logger receives per-row skip diagnostics; nil disables them.
	Logger *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.HeaderMarker == "" {
		o.HeaderMarker = DefaultHeaderMarker
	}
	if o.RowMarker == "" {
		o.RowMarker = DefaultRowMarker
	}
	if o.NotesSeparator == "" {
		o.NotesSeparator = DefaultNotesSeparator
	}
	if o.MaxHeaderDistance <= 0 {
		o.MaxHeaderDistance = DefaultMaxHeaderDistance
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	return o
}

// Strategy is one way of locating (date-header, row) pairs in a snapshot.
// Strategies never fail; an empty result means the snapshot did not match.
type Strategy interface {
	Name() string
	Attempt(doc *dom.Document, opts Options) []models.TransactionRecord
}

// strategies are tried in order; the first non-empty result wins.
func strategies() []Strategy {
	return []Strategy{
		structuralStrategy{},
		positionalStrategy{},
	}
}

// Extract produces the deduplicated, ordered transaction records for one
// snapshot of the rendered page. It always returns a (possibly empty) slice;
// an empty result is the sole failure signal and the caller is responsible
// for telling the user no transactions were found.
func Extract(doc *dom.Document, opts Options) []models.TransactionRecord {
	opts = opts.withDefaults()
	for _, s := range strategies() {
		if records := s.Attempt(doc, opts); len(records) > 0 {
			opts.Logger.Debug().
				Str("strategy", s.Name()).
				Int("records", len(records)).
				Msg("extraction succeeded")
			return records
		}
	}
	return []models.TransactionRecord{}
}

// recordFromFields applies the shared field rules to one row's ordered text
// fields: first is the payee, last is the raw amount, and with three or more
// fields the first interior field is the category and the rest join into
// notes. The row is rejected unless the raw amount field contains a digit or
// currency symbol and parses to a valid number.
func recordFromFields(fields []string, date string, opts Options) (models.TransactionRecord, bool) {
	if len(fields) < 2 {
		return models.TransactionRecord{}, false
	}

	payee := strings.TrimSpace(fields[0])
	rawAmount := fields[len(fields)-1]
	if !plausibleAmount(rawAmount) {
		return models.TransactionRecord{}, false
	}
	amount, ok := normalize.ParseAmount(rawAmount)
	if !ok {
		return models.TransactionRecord{}, false
	}

	var category, notes string
	if len(fields) >= 3 {
		interior := fields[1 : len(fields)-1]
		category = strings.TrimSpace(interior[0])
		if len(interior) > 1 {
			parts := make([]string, 0, len(interior)-1)
			for _, f := range interior[1:] {
				parts = append(parts, strings.TrimSpace(f))
			}
			notes = strings.Join(parts, opts.NotesSeparator)
		}
	}

	return models.TransactionRecord{
		Date:     date,
		Amount:   amount,
		Payee:    payee,
		Notes:    notes,
		Category: category,
		ImportID: normalize.ImportID(date, amount, payee),
	}, true
}

// plausibleAmount is the cheap pre-check before the full parse.
func plausibleAmount(s string) bool {
	return strings.ContainsAny(s, "0123456789$£€¥")
}

// isInteractiveRow matches the elements the page renders transactions as.
// The structural marker is checked first; button-like elements cover builds
// where the marker class was renamed.
func isInteractiveRow(n *dom.Node, opts Options) bool {
	if n.HasClassContaining(opts.RowMarker) {
		return true
	}
	return n.Tag() == "button" || n.Attr("role") == "button"
}

// deduper collapses repeated rows by import identity; first occurrence wins.
type deduper struct {
	seen map[string]struct{}
}

func newDeduper() *deduper {
	return &deduper{seen: make(map[string]struct{})}
}

func (d *deduper) add(id string) bool {
	if _, dup := d.seen[id]; dup {
		return false
	}
	d.seen[id] = struct{}{}
	return true
}
