// Package fetch implements the retrieval strategy chain: an ordered set of
// upstream techniques tried in sequence until one yields validated content.
package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"drivegate/internal/config"
	"drivegate/internal/drive"
)

// ErrMissingFileID indicates a retrieval request without an identifier.
var ErrMissingFileID = errors.New("retrieval request has no file identifier")

// Request is one retrieval invocation.
type Request struct {
	FileID   string
	Format   string
	ForcePDF bool
	ViewOnly bool
}

// Result is the terminal outcome of a successful chain run. Either Body is a
// validated payload stream with ContentType and Filename resolved, or
// RedirectURL points the caller at the upstream viewer page.
type Result struct {
	Body        io.ReadCloser
	ContentType string
	Filename    string
	Length      int64 // -1 when only a lower bound is known
	Strategy    string
	RedirectURL string
}

// Failure is returned when every strategy was exhausted and the viewer
// redirect fallback is disabled. LastStatus is the last upstream status
// observed, for error classification.
type Failure struct {
	Reason     string
	LastStatus int
}

func (f *Failure) Error() string { return f.Reason }

// Chain tries strategies in a fixed priority order. A strategy is abandoned
// the instant one succeeds, even if a later strategy might yield a nominally
// better result. Strategies run strictly sequentially: each outcome decides
// whether the next is needed.
type Chain struct {
	strategies []Strategy
}

// NewChain builds the chain from configuration.
func NewChain() *Chain {
	return NewChainWithClient(NewClient(), config.ViewerRedirectFallback)
}

// NewChainWithClient builds the chain around an explicit client (for tests).
func NewChainWithClient(client *Client, redirectFallback bool) *Chain {
	return &Chain{
		strategies: []Strategy{
			&viewOnlyStrategy{client: client},
			&exportStrategy{client: client},
			&directStrategy{client: client},
			&confirmStrategy{client: client},
			&viewerRedirectStrategy{enabled: redirectFallback},
		},
	}
}

// Run drives the chain for one request. Transport errors and rejected
// candidates advance to the next strategy; only cancellation or full
// exhaustion surface as errors.
func (ch *Chain) Run(ctx context.Context, req Request, meta *drive.Metadata) (*Result, error) {
	if req.FileID == "" {
		return nil, ErrMissingFileID
	}

	lastStatus := 0
	for _, strategy := range ch.strategies {
		if !strategy.Applies(req, meta) {
			continue
		}

		result, err := strategy.Attempt(ctx, req, meta)
		if err == nil {
			result.Strategy = strategy.Name()
			slog.Info("Retrieval strategy succeeded",
				"strategy", strategy.Name(),
				"file_id", req.FileID,
				"filename", result.Filename,
				"redirect", result.RedirectURL != "")
			return result, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var ae *attemptError
		if errors.As(err, &ae) && ae.status != 0 {
			lastStatus = ae.status
		}
		slog.Debug("Retrieval strategy produced no content",
			"strategy", strategy.Name(),
			"file_id", req.FileID,
			"error", err)
	}

	return nil, &Failure{Reason: "all retrieval strategies exhausted", LastStatus: lastStatus}
}
