package writer

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/snapledger/snapledger/internal/models"
)

// Columns is the fixed export column order.
var Columns = []string{"id", "date", "amount", "payee", "notes", "category", "import_id"}

// CSVWriter serializes transaction records for download. Every field is
// double-quoted with internal quotes doubled; encoding/csv only quotes when
// it must, so the quoting is done directly.
type CSVWriter struct{}

// WriteToFile writes the records as CSV to the given path.
func (w *CSVWriter) WriteToFile(path string, records []models.TransactionRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, records)
}

// Write writes a header row followed by one row per record, `\n` terminated.
func (w *CSVWriter) Write(out io.Writer, records []models.TransactionRecord) error {
	if err := writeRow(out, Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.ID,
			rec.Date,
			strconv.FormatFloat(rec.Amount, 'f', 2, 64),
			rec.Payee,
			rec.Notes,
			rec.Category,
			rec.ImportID,
		}
		if err := writeRow(out, row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

func writeRow(out io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	_, err := io.WriteString(out, strings.Join(quoted, ",")+"\n")
	return err
}

// Filename builds the download filename from a descriptive label (usually
// the inferred account name) and the current date. The label is lowercased
// and reduced to alphanumerics and underscores.
func Filename(label string, now time.Time) string {
	slug := sanitizeLabel(label)
	if slug == "" {
		slug = "account"
	}
	return fmt.Sprintf("transactions_%s_%s.csv", slug, now.Format("2006-01-02"))
}

func sanitizeLabel(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteRune('_')
		}
	}
	return b.String()
}
