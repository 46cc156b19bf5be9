package models

// TransactionRecord is one normalized transaction scraped from the page.
type TransactionRecord struct {
	// ID is always empty at extraction time; a downstream system assigns it.
	ID string `json:"id"`
	// Date is the canonical "Month DD, YYYY" form, day zero-padded.
	Date string `json:"date"`
	// Amount is in major currency units; positive = credit, negative = debit.
	Amount   float64 `json:"amount"`
	Payee    string  `json:"payee"`
	Notes    string  `json:"notes"`
	Category string  `json:"category"`
	// ImportID is a deterministic function of (date, amount, payee), used
	// for in-run dedup and as the remote idempotency key. Identical-looking
	// distinct transactions across re-renders can collide; that is a known
	// limitation, not a defect.
	ImportID string `json:"import_id"`
}
