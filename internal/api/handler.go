package api

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/snapledger/snapledger/internal/budget"
	"github.com/snapledger/snapledger/internal/config"
	"github.com/snapledger/snapledger/internal/dom"
	"github.com/snapledger/snapledger/internal/extract"
	"github.com/snapledger/snapledger/internal/models"
	"github.com/snapledger/snapledger/internal/writer"
)

const version = "1.0.0"

// SnapshotRequest is the JSON body the extension relay POSTs: the rendered
// HTML snapshot plus the inferred account label, with optional marker
// overrides for page builds that renamed the expected classes.
type SnapshotRequest struct {
	HTML         string `json:"html"`
	Account      string `json:"account"`
	HeaderMarker string `json:"headerMarker,omitempty"`
	RowMarker    string `json:"rowMarker,omitempty"`
}

// ExtractResponse is the JSON response from /api/extract and /api/sync.
type ExtractResponse struct {
	Success      bool                       `json:"success"`
	Error        string                     `json:"error,omitempty"`
	RunID        string                     `json:"runId,omitempty"`
	Count        int                        `json:"count"`
	Transactions []models.TransactionRecord `json:"transactions,omitempty"`
	Submitted    int                        `json:"submitted,omitempty"`
}

// Importer is the slice of budget.Client the sync handler needs; tests
// substitute a fake.
type Importer interface {
	ImportTransactions(ctx context.Context, accountLabel string, records []models.TransactionRecord) (*budget.ImportResult, error)
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Cfg *config.Config
	Log zerolog.Logger

	// NewImporter builds the sync client; overridable in tests. The sync
	// configuration is read fresh on each sync action.
	NewImporter func(cfg budget.Config) Importer
}

// NewHandler wires a Handler over loaded configuration.
func NewHandler(cfg *config.Config, log zerolog.Logger) *Handler {
	return &Handler{
		Cfg: cfg,
		Log: log,
		NewImporter: func(c budget.Config) Importer {
			return budget.NewClient(c, log)
		},
	}
}

// Register sets up the API routes.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/extract", h.HandleExtract)
	app.Post("/api/export", h.HandleExport)
	app.Post("/api/sync", h.HandleSync)
}

// HandleHealth reports service status.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": version,
		"engine":  "fiber",
	})
}

// HandleExtract runs the extraction pipeline over the posted snapshot and
// returns the normalized records.
func (h *Handler) HandleExtract(c *fiber.Ctx) error {
	_, records, runID, ok := h.extractFromRequest(c)
	if !ok {
		return nil
	}

	return c.JSON(ExtractResponse{
		Success:      true,
		RunID:        runID,
		Count:        len(records),
		Transactions: records,
	})
}

// HandleExport runs extraction and returns the records as a CSV download.
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	req, records, _, ok := h.extractFromRequest(c)
	if !ok {
		return nil
	}

	var buf bytes.Buffer
	w := &writer.CSVWriter{}
	if err := w.Write(&buf, records); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	filename := writer.Filename(req.Account, time.Now())
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}

// HandleSync runs extraction and submits the records to the configured
// remote budget account. Configuration problems are 422s the user can fix;
// upstream failures come back as 502 with the remote status and body.
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	req, records, runID, ok := h.extractFromRequest(c)
	if !ok {
		return nil
	}

	if len(records) == 0 {
		return writeError(c, fiber.StatusUnprocessableEntity, "no transactions found")
	}

	client := h.NewImporter(h.Cfg.Sync)
	result, err := client.ImportTransactions(c.UserContext(), req.Account, records)
	if err != nil {
		if budget.IsConfigError(err) {
			return writeError(c, fiber.StatusUnprocessableEntity, err.Error())
		}
		return writeError(c, fiber.StatusBadGateway, err.Error())
	}

	h.Log.Info().
		Str("run_id", runID).
		Str("account", req.Account).
		Int("submitted", result.Submitted).
		Msg("sync complete")

	return c.JSON(ExtractResponse{
		Success:   true,
		RunID:     runID,
		Count:     len(records),
		Submitted: result.Submitted,
	})
}

// extractFromRequest parses the snapshot body and runs extraction. When it
// returns ok=false the error response has already been written.
func (h *Handler) extractFromRequest(c *fiber.Ctx) (SnapshotRequest, []models.TransactionRecord, string, bool) {
	var req SnapshotRequest
	if err := c.BodyParser(&req); err != nil {
		writeError(c, fiber.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return req, nil, "", false
	}
	if req.HTML == "" {
		writeError(c, fiber.StatusBadRequest, "missing html snapshot")
		return req, nil, "", false
	}

	doc, err := dom.ParseString(req.HTML)
	if err != nil {
		writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("could not parse snapshot: %v", err))
		return req, nil, "", false
	}

	runID := uuid.NewString()
	log := h.Log.With().Str("run_id", runID).Logger()

	opts := h.Cfg.ExtractOptions()
	if req.HeaderMarker != "" {
		opts.HeaderMarker = req.HeaderMarker
	}
	if req.RowMarker != "" {
		opts.RowMarker = req.RowMarker
	}
	opts.Logger = &log

	records := extract.Extract(doc, opts)
	log.Info().Str("account", req.Account).Int("records", len(records)).Msg("extraction run")

	return req, records, runID, true
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ExtractResponse{
		Success: false,
		Error:   msg,
	})
}
