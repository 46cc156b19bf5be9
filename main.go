package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/snapledger/snapledger/internal/api"
	"github.com/snapledger/snapledger/internal/budget"
	"github.com/snapledger/snapledger/internal/config"
	"github.com/snapledger/snapledger/internal/dom"
	"github.com/snapledger/snapledger/internal/extract"
	"github.com/snapledger/snapledger/internal/logger"
	"github.com/snapledger/snapledger/internal/writer"
)

const version = "1.0.0"

func main() {
	// CLI flags
	accountFlag := flag.String("account", "", "Account display label (used for the CSV filename and the sync account mapping)")
	outputFlag := flag.String("output", "", "Output CSV file path (defaults to transactions_<account>_<date>.csv)")
	syncFlag := flag.Bool("sync", false, "Submit extracted transactions to the configured budgeting API instead of writing CSV")
	settleFlag := flag.Bool("settle", false, "Poll the snapshot file until it stops growing before extracting (for captures rewritten while the page loads)")
	serveFlag := flag.Bool("serve", false, "Run the HTTP API instead of processing files")
	envFlag := flag.String("env", "", "Optional .env file with sync configuration")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `snapledger - banking page snapshot to CSV / budget sync

Extracts transactions from saved HTML snapshots of a banking web app,
exports them as CSV, or submits them to a remote budgeting API.

Usage:
  snapledger [flags] <snapshot.html> [snapshot2.html ...]
  snapledger -serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Extract and write CSV
  snapledger -account="Joint Checking" page.html

  # Submit to the configured budget (SYNC_ENDPOINT, SYNC_API_KEY,
  # SYNC_BUDGET_ID, ACCOUNT_MAP)
  snapledger -account="Joint Checking" -sync page.html

  # Wait for a capture that is still being written, then write CSV
  snapledger -account="Joint Checking" -settle page.html

  # Run the HTTP API for the extension relay
  snapledger -serve
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("snapledger v%s\n", version)
		os.Exit(0)
	}

	cfg := config.Load(*envFlag)
	log := logger.New()

	if *serveFlag {
		h := api.NewHandler(cfg, log)
		app := fiber.New()
		h.Register(app)
		log.Info().Str("addr", cfg.ServerAddr).Msg("starting API server")
		if err := app.Listen(cfg.ServerAddr); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	for _, inputPath := range flag.Args() {
		if err := processFile(inputPath, *accountFlag, *outputFlag, *syncFlag, *settleFlag, cfg, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			os.Exit(1)
		}
	}
}

func processFile(inputPath, account, outputPath string, doSync, settle bool, cfg *config.Config, log zerolog.Logger) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	ext := strings.ToLower(filepath.Ext(inputPath))
	if ext != ".html" && ext != ".htm" {
		return fmt.Errorf("expected .html file, got %q", ext)
	}

	fmt.Printf("Processing: %s\n", inputPath)

	var doc *dom.Document
	var err error
	if settle {
		doc, err = extract.Settle(context.Background(), snapshotFromFile(inputPath), cfg.SettleOptions())
	} else {
		doc, err = parseSnapshotFile(inputPath)
	}
	if err != nil {
		return fmt.Errorf("snapshot parse failed: %w", err)
	}

	records := extract.Extract(doc, cfg.ExtractOptions())
	fmt.Printf("  Found %d transaction(s)\n", len(records))

	if len(records) == 0 {
		fmt.Println("  Warning: No transactions found. The snapshot may not match the expected page layout.")
		fmt.Println("  Try overriding HEADER_MARKER / ROW_MARKER if the page build changed.")
		return nil
	}

	if doSync {
		client := budget.NewClient(cfg.Sync, log)
		result, err := client.ImportTransactions(context.Background(), account, records)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		fmt.Printf("  Submitted %d transaction(s)\n", result.Submitted)
		fmt.Println("  Done.")
		return nil
	}

	outPath := outputPath
	if outPath == "" {
		outPath = writer.Filename(account, time.Now())
	}

	w := &writer.CSVWriter{}
	if err := w.WriteToFile(outPath, records); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}

	fmt.Printf("  Output: %s\n", outPath)
	fmt.Println("  Done.")
	return nil
}

func parseSnapshotFile(path string) (*dom.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()
	return dom.Parse(f)
}

// snapshotFromFile re-reads the file on every poll; the capture side keeps
// rewriting it while the page loads more rows.
func snapshotFromFile(path string) extract.SnapshotFunc {
	return func(ctx context.Context) (*dom.Document, error) {
		return parseSnapshotFile(path)
	}
}
