package endpoints

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"drivegate/internal/drive"
	"drivegate/internal/extract"
	"drivegate/internal/fetch"
	"drivegate/internal/history"

	"github.com/gin-gonic/gin"
)

// MetadataProber resolves file metadata, degrading instead of failing.
type MetadataProber interface {
	Probe(ctx context.Context, fileID string) *drive.Metadata
}

// Retriever drives the retrieval strategy chain.
type Retriever interface {
	Run(ctx context.Context, req fetch.Request, meta *drive.Metadata) (*fetch.Result, error)
}

// MetadataCache is an optional short-TTL metadata store.
type MetadataCache interface {
	Get(ctx context.Context, fileID string) (*drive.Metadata, bool)
	Set(ctx context.Context, fileID string, meta *drive.Metadata)
}

// HistoryStore records retrieval outcomes.
type HistoryStore interface {
	Add(ctx context.Context, rec *history.Record) error
	Recent(ctx context.Context, limit int) ([]history.Record, error)
}

// Deps bundles what the handlers need.
type Deps struct {
	Prober  MetadataProber
	Chain   Retriever
	Cache   MetadataCache
	History HistoryStore
}

// ErrorResponse is the structured failure payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HandleFetch retrieves a file and streams it to the caller with
// content-type and attachment headers, redirects to the upstream viewer
// when no content path worked, or answers with a classified error.
func HandleFetch(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileID, ok := requestedFileID(c)
		if !ok {
			return
		}

		req := fetch.Request{
			FileID:   fileID,
			Format:   c.Query("format"),
			ForcePDF: boolQuery(c, "forcepdf"),
			ViewOnly: boolQuery(c, "view"),
		}
		meta := lookupMetadata(c.Request.Context(), deps, fileID)

		result, err := deps.Chain.Run(c.Request.Context(), req, meta)
		if err != nil {
			respondFailure(c, fileID, err)
			return
		}

		if result.RedirectURL != "" {
			recordOutcome(deps, &history.Record{
				FileID:   fileID,
				Strategy: result.Strategy,
				Status:   "redirect",
			})
			c.Redirect(http.StatusFound, result.RedirectURL)
			return
		}

		defer result.Body.Close()

		// Quoted so embedded quotes in the filename cannot break the header.
		disposition := fmt.Sprintf("attachment; filename=%q", result.Filename)
		counter := &countingReader{reader: result.Body}
		c.DataFromReader(http.StatusOK, result.Length, result.ContentType, counter, map[string]string{
			"Content-Disposition": disposition,
		})

		// A disconnect mid-stream is an aborted delivery, never a success.
		status := "ok"
		if c.Request.Context().Err() != nil {
			status = "aborted"
		}
		recordOutcome(deps, &history.Record{
			FileID:      fileID,
			Strategy:    result.Strategy,
			Filename:    result.Filename,
			ContentType: result.ContentType,
			Bytes:       counter.n,
			Status:      status,
		})
	}
}

// requestedFileID resolves the file identifier from the id or url query
// parameter, answering a terminal input error when neither yields one.
func requestedFileID(c *gin.Context) (string, bool) {
	if fileID := c.Query("id"); fileID != "" {
		return fileID, true
	}

	link := c.Query("url")
	if link == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing id or url parameter"})
		return "", false
	}

	fileID, err := extract.FileID(link)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Could not extract a file ID from the link",
			Details: link,
		})
		return "", false
	}
	return fileID, true
}

func lookupMetadata(ctx context.Context, deps Deps, fileID string) *drive.Metadata {
	if deps.Cache != nil {
		if meta, ok := deps.Cache.Get(ctx, fileID); ok {
			return meta
		}
	}

	meta := deps.Prober.Probe(ctx, fileID)
	if deps.Cache != nil {
		deps.Cache.Set(ctx, fileID, meta)
	}
	return meta
}

func respondFailure(c *gin.Context, fileID string, err error) {
	if c.Request.Context().Err() != nil {
		// Caller is gone; nothing useful to write.
		return
	}

	if errors.Is(err, fetch.ErrMissingFileID) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing file identifier"})
		return
	}

	var failure *fetch.Failure
	if errors.As(err, &failure) {
		switch {
		case failure.LastStatus == http.StatusNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "File not found"})
		case failure.LastStatus == 0 || failure.LastStatus >= http.StatusInternalServerError:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve file"})
		default:
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "File is not downloadable",
				Details: "Ask the owner to enable link sharing for this file",
			})
		}
		slog.Warn("Retrieval exhausted all strategies", "file_id", fileID, "last_status", failure.LastStatus)
		return
	}

	slog.Error("Retrieval failed unexpectedly", "file_id", fileID, "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve file"})
}

// recordOutcome writes history on a background context; the request context
// may already be dead when delivery finished.
func recordOutcome(deps Deps, rec *history.Record) {
	if deps.History == nil {
		return
	}
	if err := deps.History.Add(context.Background(), rec); err != nil {
		slog.Warn("Failed to record retrieval history", "file_id", rec.FileID, "error", err)
	}
}

func boolQuery(c *gin.Context, key string) bool {
	switch c.Query(key) {
	case "1", "true", "yes":
		return true
	}
	return false
}

type countingReader struct {
	reader io.Reader
	n      int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.n += int64(n)
	return n, err
}
