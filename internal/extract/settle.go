package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/snapledger/snapledger/internal/dom"
)

// Defaults for the settle poller. Like the positional distance bound, the
// counts were chosen empirically against one page and are configurable for
// that reason.
const (
	DefaultSettleInterval     = 500 * time.Millisecond
	DefaultSettleMaxAttempts  = 20
	DefaultSettleStableRounds = 3
)

// SnapshotFunc captures the host page's current rendered state.
type SnapshotFunc func(ctx context.Context) (*dom.Document, error)

// SettleOptions tunes the convergence heuristic.
type SettleOptions struct {
	// Interval is the fixed delay between snapshots.
	Interval time.Duration
	// MaxAttempts caps the total number of snapshots taken.
	MaxAttempts int
	// StableRounds is the run of consecutive no-growth observations that
	// counts as convergence.
	StableRounds int
}

func (o SettleOptions) withDefaults() SettleOptions {
	if o.Interval <= 0 {
		o.Interval = DefaultSettleInterval
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultSettleMaxAttempts
	}
	if o.StableRounds <= 0 {
		o.StableRounds = DefaultSettleStableRounds
	}
	return o
}

// Settle polls the snapshot source until the rendered document height stops
// growing for a run of consecutive observations, or until the attempt cap is
// reached. It is a convergence heuristic, not a hard deadline: hitting the
// cap still returns the last snapshot so extraction can proceed on whatever
// the page managed to render.
func Settle(ctx context.Context, fetch SnapshotFunc, opts SettleOptions) (*dom.Document, error) {
	opts = opts.withDefaults()

	var last *dom.Document
	lastHeight := -1.0
	stable := 0

	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		doc, err := fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("settle: snapshot %d: %w", attempt+1, err)
		}
		last = doc

		height := doc.Height()
		if height <= lastHeight {
			stable++
		} else {
			stable = 0
			lastHeight = height
		}
		if stable >= opts.StableRounds {
			return last, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.Interval):
		}
	}

	return last, nil
}
