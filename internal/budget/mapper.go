package budget

import (
	"math"
	"time"

	"github.com/snapledger/snapledger/internal/models"
)

// ImportTransaction is one transaction in the remote API's import schema.
type ImportTransaction struct {
	Date       string `json:"date"`   // YYYY-MM-DD
	Amount     int64  `json:"amount"` // integer minor units
	PayeeName  string `json:"payee_name"`
	Notes      string `json:"notes"`
	ImportedID string `json:"imported_id"` // idempotency key
}

const (
	canonicalLayout = "January 02, 2006"
	remoteLayout    = "2006-01-02"
	notesJoiner     = " | "
)

// MapRecord converts a scraped record into the remote import schema: the
// canonical date reformats to YYYY-MM-DD, the amount converts to rounded
// minor units, and category joins notes. A date that cannot be reparsed
// passes through as-is; the remote API is the backstop, matching the
// no-downstream-validation policy for dates.
func MapRecord(rec models.TransactionRecord) ImportTransaction {
	date := rec.Date
	if t, err := time.Parse(canonicalLayout, rec.Date); err == nil {
		date = t.Format(remoteLayout)
	}

	notes := rec.Notes
	switch {
	case rec.Category != "" && rec.Notes != "":
		notes = rec.Category + notesJoiner + rec.Notes
	case rec.Category != "":
		notes = rec.Category
	}

	return ImportTransaction{
		Date:       date,
		Amount:     int64(math.Round(rec.Amount * 100)),
		PayeeName:  rec.Payee,
		Notes:      notes,
		ImportedID: rec.ImportID,
	}
}

// MapRecords converts a record sequence, preserving order.
func MapRecords(records []models.TransactionRecord) []ImportTransaction {
	out := make([]ImportTransaction, 0, len(records))
	for _, rec := range records {
		out = append(out, MapRecord(rec))
	}
	return out
}
