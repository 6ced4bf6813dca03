package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"drivegate/internal/config"
)

// Candidate is one upstream response under evaluation. Length is the best
// known payload size; Exact reports whether it is the full byte count or
// only a lower bound from a bounded peek.
type Candidate struct {
	Status      int
	ContentType string
	Length      int64
	Exact       bool
	Body        io.ReadCloser
}

// Client issues the raw upstream requests of the strategy chain. The HTTP
// client bounds the wait for response headers rather than the whole
// exchange, so validated payloads can stream for longer than the per-attempt
// timeout without being cut off mid-body.
type Client struct {
	stream    *http.Client
	userAgent string
}

// NewClient builds a client with the configured redirect bound and timeouts.
func NewClient() *Client {
	checkRedirect := func(req *http.Request, via []*http.Request) error {
		if len(via) >= config.MaxRedirects {
			return fmt.Errorf("stopped after %d redirects", config.MaxRedirects)
		}
		return nil
	}

	return &Client{
		stream: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: config.UpstreamTimeout,
			},
			CheckRedirect: checkRedirect,
		},
		userAgent: config.UserAgent,
	}
}

// Get performs one upstream attempt. Non-success statuses are returned as
// candidates, never as errors; only transport failures error. When the
// response must be sized for validation (HTML-typed or missing a length),
// the body is peeked up to the interstitial ceiling and reassembled so
// delivery still streams.
func (c *Client) Get(ctx context.Context, rawURL string) (*Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", rawURL, err)
	}

	cand := &Candidate{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Length:      resp.ContentLength,
		Exact:       resp.ContentLength >= 0,
		Body:        resp.Body,
	}

	if !cand.Exact || isHTMLType(cand.ContentType) {
		if err := peek(cand); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("read %s: %w", rawURL, err)
		}
	}

	return cand, nil
}

// peek buffers up to the interstitial ceiling so the validator can size the
// payload, then splices the buffered bytes back in front of the remaining
// stream. Buffering never exceeds the ceiling plus one byte.
func peek(cand *Candidate) error {
	limit := config.InterstitialCeiling + 1
	buffered, err := io.ReadAll(io.LimitReader(cand.Body, limit))
	if err != nil {
		return err
	}

	if int64(len(buffered)) < limit {
		// Whole payload fits under the ceiling: exact size known.
		cand.Length = int64(len(buffered))
		cand.Exact = true
		cand.Body = &splicedBody{reader: bytes.NewReader(buffered), closer: cand.Body}
		return nil
	}

	// More data remains; the payload is at least ceiling-sized, which is
	// all the validator needs to know.
	if cand.Length < int64(len(buffered)) {
		cand.Length = int64(len(buffered))
		cand.Exact = false
	}
	cand.Body = &splicedBody{
		reader: io.MultiReader(bytes.NewReader(buffered), cand.Body),
		closer: cand.Body,
	}
	return nil
}

// splicedBody replays peeked bytes ahead of the live upstream stream.
type splicedBody struct {
	reader io.Reader
	closer io.Closer
}

func (s *splicedBody) Read(p []byte) (int, error) { return s.reader.Read(p) }
func (s *splicedBody) Close() error               { return s.closer.Close() }
