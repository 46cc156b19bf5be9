package budget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/snapledger/snapledger/internal/models"
)

// Configuration preconditions for sync. These are user-visible settings
// errors, never retried: the operation aborts before anything is submitted.
var (
	ErrMissingEndpoint = errors.New("sync endpoint is not configured")
	ErrMissingBudgetID = errors.New("budget id is not configured")
)

// UnmappedAccountError means the inferred account label has no remote
// account configured.
type UnmappedAccountError struct {
	Label string
}

func (e *UnmappedAccountError) Error() string {
	return fmt.Sprintf("no remote account configured for %q", e.Label)
}

// APIError carries the upstream status and body so the failure detail can be
// surfaced verbatim to the user.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote import failed: status %d: %s", e.StatusCode, e.Body)
}

// Config is the connection configuration for the remote budgeting API.
type Config struct {
	Endpoint string
	APIKey   string
	BudgetID string
	// Accounts maps host-page account display labels to remote account IDs.
	Accounts map[string]string
}

// ImportResult summarizes one accepted submission.
type ImportResult struct {
	Submitted int
	// ResponseBody is the raw 2xx JSON body from the remote API.
	ResponseBody string
}

type importRequest struct {
	Transactions []ImportTransaction `json:"transactions"`
}

// Client submits scraped transactions to the remote budgeting API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger zerolog.Logger
}

// NewClient builds a Client over the given configuration.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// ImportTransactions maps the records into the remote schema and POSTs them
// to the import endpoint for the account mapped to accountLabel. Missing
// configuration aborts before any network call; a non-2xx response is
// returned as an APIError with the upstream status and body text.
func (c *Client) ImportTransactions(ctx context.Context, accountLabel string, records []models.TransactionRecord) (*ImportResult, error) {
	accountID, err := c.resolveAccount(accountLabel)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(importRequest{Transactions: MapRecords(records)})
	if err != nil {
		return nil, fmt.Errorf("encoding import request: %w", err)
	}

	url := fmt.Sprintf("%s/budgets/%s/accounts/%s/transactions/import",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.BudgetID, accountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building import request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)

	c.logger.Info().
		Str("account", accountLabel).
		Int("transactions", len(records)).
		Msg("submitting transactions to remote budget")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("import request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading import response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return &ImportResult{Submitted: len(records), ResponseBody: string(body)}, nil
}

// resolveAccount checks the sync preconditions and resolves the remote
// account ID for the label.
func (c *Client) resolveAccount(accountLabel string) (string, error) {
	if strings.TrimSpace(c.cfg.Endpoint) == "" {
		return "", ErrMissingEndpoint
	}
	if strings.TrimSpace(c.cfg.BudgetID) == "" {
		return "", ErrMissingBudgetID
	}
	accountID, ok := c.cfg.Accounts[strings.TrimSpace(accountLabel)]
	if !ok || accountID == "" {
		return "", &UnmappedAccountError{Label: accountLabel}
	}
	return accountID, nil
}

// IsConfigError reports whether the error is a settings precondition failure
// rather than a transport problem, so callers can surface it as such.
func IsConfigError(err error) bool {
	var unmapped *UnmappedAccountError
	return errors.Is(err, ErrMissingEndpoint) ||
		errors.Is(err, ErrMissingBudgetID) ||
		errors.As(err, &unmapped)
}
