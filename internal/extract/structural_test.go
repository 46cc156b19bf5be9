package extract

import (
	"testing"
	"time"

	"github.com/snapledger/snapledger/internal/dom"
	"github.com/snapledger/snapledger/internal/normalize"
)

var testNow = time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)

func mustParse(t *testing.T, fixture string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(fixture)
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return doc
}

const twoGroupFixture = `
<html><body><div class="transaction-feed">
  <div class="transaction-date-header">Today</div>
  <div class="group">
    <button class="transaction-row"><span>Coffee Shop</span><span>-$4.50</span></button>
  </div>
  <div class="transaction-date-header">Yesterday</div>
  <div class="group">
    <button class="transaction-row"><span>Employer</span><span>$2,000.00</span></button>
  </div>
</div></body></html>`

func TestStructuralTwoDateGroups(t *testing.T) {
	doc := mustParse(t, twoGroupFixture)

	records := Extract(doc, Options{Now: testNow})
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first, second := records[0], records[1]

	if first.Payee != "Coffee Shop" || first.Amount != -4.5 {
		t.Errorf("first record: got %q / %f", first.Payee, first.Amount)
	}
	if second.Payee != "Employer" || second.Amount != 2000.0 {
		t.Errorf("second record: got %q / %f", second.Payee, second.Amount)
	}

	wantToday := normalize.CanonicalDate("Today", testNow)
	wantYesterday := normalize.CanonicalDate("Yesterday", testNow)
	if first.Date != wantToday {
		t.Errorf("first date: got %q, want %q", first.Date, wantToday)
	}
	if second.Date != wantYesterday {
		t.Errorf("second date: got %q, want %q", second.Date, wantYesterday)
	}

	if first.ImportID == second.ImportID {
		t.Error("expected distinct import identities")
	}
	if first.ID != "" || second.ID != "" {
		t.Error("id must be empty at extraction time")
	}
}

func TestStructuralInteriorFields(t *testing.T) {
	fixture := `
<html><body>
  <div class="transaction-date-header">Today</div>
  <div>
    <button class="transaction-row">
      <span>Grocer</span><span>Groceries</span><span>weekly run</span><span>card 1234</span><span>-$82.10</span>
    </button>
  </div>
</body></html>`
	doc := mustParse(t, fixture)

	records := Extract(doc, Options{Now: testNow})
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Category != "Groceries" {
		t.Errorf("category: got %q, want %q", rec.Category, "Groceries")
	}
	if rec.Notes != "weekly run / card 1234" {
		t.Errorf("notes: got %q, want %q", rec.Notes, "weekly run / card 1234")
	}
	if rec.Amount != -82.10 {
		t.Errorf("amount: got %f", rec.Amount)
	}
}

func TestStructuralSkipsUnparseableRows(t *testing.T) {
	fixture := `
<html><body>
  <div class="transaction-date-header">Today</div>
  <div>
    <button class="transaction-row"><span>Pending Thing</span><span>Processing</span></button>
    <button class="transaction-row"><span>Real Thing</span><span>-$1.00</span></button>
  </div>
</body></html>`
	doc := mustParse(t, fixture)

	records := Extract(doc, Options{Now: testNow})
	if len(records) != 1 {
		t.Fatalf("expected the unparseable row to be skipped, got %d records", len(records))
	}
	if records[0].Payee != "Real Thing" {
		t.Errorf("got %q", records[0].Payee)
	}
}

func TestStructuralDeduplicatesRepeats(t *testing.T) {
	fixture := `
<html><body>
  <div class="transaction-date-header">Today</div>
  <div>
    <button class="transaction-row"><span>Coffee Shop</span><span>-$4.50</span></button>
    <button class="transaction-row"><span>Coffee Shop</span><span>-$4.50</span></button>
  </div>
</body></html>`
	doc := mustParse(t, fixture)

	records := Extract(doc, Options{Now: testNow})
	if len(records) != 1 {
		t.Fatalf("expected duplicates to collapse, got %d records", len(records))
	}
}

func TestStructuralStopsAtNextHeader(t *testing.T) {
	// The row after the second header must not inherit the first date.
	doc := mustParse(t, twoGroupFixture)

	records := Extract(doc, Options{Now: testNow})
	wantYesterday := normalize.CanonicalDate("Yesterday", testNow)
	if records[1].Date != wantYesterday {
		t.Errorf("second group date: got %q, want %q", records[1].Date, wantYesterday)
	}
}

func TestStructuralAcceptsRoleButtonRows(t *testing.T) {
	// Some page builds render rows as anchors or divs with role=button
	// instead of real button elements.
	fixture := `
<html><body>
  <div class="transaction-date-header">Today</div>
  <div>
    <a role="button"><span>Coffee Shop</span><span>-$4.50</span></a>
    <div role="button"><span>Bookstore</span><span>-$12.00</span></div>
  </div>
</body></html>`
	doc := mustParse(t, fixture)

	records := Extract(doc, Options{Now: testNow})
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Payee != "Coffee Shop" || records[1].Payee != "Bookstore" {
		t.Errorf("got %q, %q", records[0].Payee, records[1].Payee)
	}
}

func TestExtractEmptySnapshot(t *testing.T) {
	doc := mustParse(t, `<html><body><p>nothing here</p></body></html>`)

	records := Extract(doc, Options{Now: testNow})
	if records == nil {
		t.Fatal("expected empty slice, not nil")
	}
	if len(records) != 0 {
		t.Fatalf("expected 0 records, got %d", len(records))
	}
}
