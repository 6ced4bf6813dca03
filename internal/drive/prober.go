// Package drive probes Google Drive for file metadata. The probe never fails
// past its boundary: when the API refuses, it degrades to scraping the
// public viewer page.
package drive

import (
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"drivegate/internal/config"
	"drivegate/internal/naming"

	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Metadata describes one Drive file as far as the service could determine.
// A degraded record (name "file", unknown MIME type) substitutes when the
// probe fails, so callers always receive a usable value.
type Metadata struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	MIMEType      string   `json:"mimeType,omitempty"`
	Size          int64    `json:"size,omitempty"`
	CanDownload   bool     `json:"canDownload"`
	NativeApp     bool     `json:"isGoogleApps"`
	ViewOnly      bool     `json:"isViewOnly,omitempty"`
	ExportOptions []string `json:"exportOptions"`
	Degraded      bool     `json:"-"`
}

// Prober resolves file metadata via the Drive v3 API with a viewer-page
// scrape fallback.
type Prober struct {
	drive      *drivev3.Service
	httpClient *http.Client
}

// NewProber creates a prober against the public Drive API. An API key is
// used when configured; restricted files still come back non-success and
// take the degraded path.
func NewProber(ctx context.Context) (*Prober, error) {
	opts := []option.ClientOption{}
	if config.DriveAPIKey != "" {
		opts = append(opts, option.WithAPIKey(config.DriveAPIKey))
	} else {
		opts = append(opts, option.WithoutAuthentication())
	}
	if config.DriveAPIEndpoint != "" {
		opts = append(opts, option.WithEndpoint(config.DriveAPIEndpoint))
	}

	service, err := drivev3.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	slog.Info("Drive metadata prober initialized", "api_key_set", config.DriveAPIKey != "")
	return &Prober{
		drive:      service,
		httpClient: &http.Client{Timeout: config.UpstreamTimeout},
	}, nil
}

// NewProberWithService wraps an existing Drive service (for testing).
func NewProberWithService(service *drivev3.Service) *Prober {
	return &Prober{
		drive:      service,
		httpClient: &http.Client{Timeout: config.UpstreamTimeout},
	}
}

// Probe returns metadata for fileID. Non-success upstream responses are
// treated as "inaccessible via API" and answered with a degraded record;
// an error never escapes this boundary.
func (p *Prober) Probe(ctx context.Context, fileID string) *Metadata {
	file, err := p.drive.Files.Get(fileID).
		Fields(googleapi.Field(config.MetadataFields)).
		Context(ctx).Do()
	if err != nil {
		slog.Warn("Metadata probe failed, falling back to viewer scrape", "file_id", fileID, "error", err)
		return p.degraded(ctx, fileID)
	}

	meta := &Metadata{
		ID:          fileID,
		Name:        file.Name,
		MIMEType:    file.MimeType,
		Size:        file.Size,
		CanDownload: file.Capabilities == nil || file.Capabilities.CanDownload,
	}
	if meta.Name == "" {
		meta.Name = "file"
	}
	meta.ViewOnly = !meta.CanDownload
	meta.NativeApp = naming.IsNativeApp(meta.MIMEType)
	if meta.NativeApp {
		meta.ExportOptions = naming.ExportOptions(meta.MIMEType)
	}

	slog.Debug("Metadata probe succeeded",
		"file_id", fileID,
		"name", meta.Name,
		"mime_type", meta.MIMEType,
		"can_download", meta.CanDownload)
	return meta
}

var titlePattern = regexp.MustCompile(`(?is)<title>(.*?)</title>`)

// viewerTitleSuffixes are trimmed off scraped page titles.
var viewerTitleSuffixes = []string{" - Google Drive", " - Google Docs", " - Google Sheets", " - Google Slides"}

// pdfMarkers are telltale viewer fragments that justify guessing a PDF-like
// type from the scrape; absent them the MIME type stays unknown.
var pdfMarkers = []string{"application/pdf", "drive-viewer", "viewerng"}

// degraded scrapes the resource's view page for a best-effort name and, when
// viewer markers are present, a PDF MIME-type guess.
func (p *Prober) degraded(ctx context.Context, fileID string) *Metadata {
	meta := &Metadata{
		ID:       fileID,
		Name:     "file",
		ViewOnly: true,
		Degraded: true,
	}

	pageURL := fmt.Sprintf("%s/d/%s/view", config.ViewerBase, fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return meta
	}
	req.Header.Set("User-Agent", config.UserAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		slog.Warn("Viewer page scrape failed", "file_id", fileID, "error", err)
		return meta
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return meta
	}

	// The title and viewer markers sit near the top of the page.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 256<<10))
	if err != nil {
		return meta
	}
	page := string(body)

	if matches := titlePattern.FindStringSubmatch(page); len(matches) > 1 {
		title := html.UnescapeString(strings.TrimSpace(matches[1]))
		for _, suffix := range viewerTitleSuffixes {
			title = strings.TrimSuffix(title, suffix)
		}
		if title != "" {
			meta.Name = title
		}
	}

	for _, marker := range pdfMarkers {
		if strings.Contains(page, marker) {
			meta.MIMEType = "application/pdf"
			break
		}
	}

	slog.Info("Using degraded metadata", "file_id", fileID, "name", meta.Name, "mime_type", meta.MIMEType)
	return meta
}
