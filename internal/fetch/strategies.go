package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"drivegate/internal/config"
	"drivegate/internal/drive"
	"drivegate/internal/naming"
)

// Strategy is one concrete retrieval technique in the chain, targeting a
// distinct upstream endpoint/parameter combination.
type Strategy interface {
	Name() string
	// Applies reports whether the strategy should run for this request.
	Applies(req Request, meta *drive.Metadata) bool
	// Attempt performs the upstream calls and returns a validated result,
	// or an error that advances the chain.
	Attempt(ctx context.Context, req Request, meta *drive.Metadata) (*Result, error)
}

// attemptError carries the last observed upstream status so an exhausted
// chain can classify its failure.
type attemptError struct {
	msg    string
	status int
}

func (e *attemptError) Error() string { return e.msg }

// viewOnlyStrategy serves view-only or forced-PDF requests from the print
// endpoint, falling back to the embedded preview. Tiny payloads are rejected
// as likely error stubs.
type viewOnlyStrategy struct {
	client *Client
}

func (s *viewOnlyStrategy) Name() string { return "view-only-pdf" }

func (s *viewOnlyStrategy) Applies(req Request, meta *drive.Metadata) bool {
	if req.ViewOnly || req.ForcePDF {
		return true
	}
	return meta.ViewOnly && strings.Contains(meta.MIMEType, "pdf")
}

func (s *viewOnlyStrategy) Attempt(ctx context.Context, req Request, meta *drive.Metadata) (*Result, error) {
	lastStatus := 0
	for _, target := range []string{printURL(req.FileID), previewURL(req.FileID)} {
		cand, err := s.client.Get(ctx, target)
		if err != nil {
			continue
		}
		if !Acceptable(cand) || cand.Length < config.MinPayloadBytes {
			lastStatus = cand.Status
			cand.Body.Close()
			continue
		}

		contentType := cand.ContentType
		if contentType == "" {
			contentType = "application/pdf"
		}
		return newResult(cand, contentType, req, meta), nil
	}
	return nil, &attemptError{msg: "print and preview endpoints yielded no content", status: lastStatus}
}

// exportStrategy retrieves native apps documents through the export
// endpoint. The delivered content type comes from the format table; the
// export endpoint's declared header is not trusted.
type exportStrategy struct {
	client *Client
}

func (s *exportStrategy) Name() string { return "native-export" }

func (s *exportStrategy) Applies(req Request, meta *drive.Metadata) bool {
	return meta.NativeApp || req.Format != ""
}

func (s *exportStrategy) Attempt(ctx context.Context, req Request, meta *drive.Metadata) (*Result, error) {
	format := req.Format
	if format == "" {
		format = naming.DefaultExportFormat(meta.MIMEType)
	}

	cand, err := s.client.Get(ctx, exportURL(req.FileID, meta.MIMEType, format))
	if err != nil {
		return nil, &attemptError{msg: err.Error()}
	}
	if !Acceptable(cand) {
		status := cand.Status
		cand.Body.Close()
		return nil, &attemptError{msg: fmt.Sprintf("export as %s rejected", format), status: status}
	}

	return newResult(cand, naming.MIMEForFormat(format), req, meta), nil
}

// directStrategy is the default path for ordinary files. An interstitial
// answer under the size ceiling earns one retry against the alternate URL
// parameterization before the path is abandoned.
type directStrategy struct {
	client *Client
}

func (s *directStrategy) Name() string { return "direct-download" }

func (s *directStrategy) Applies(Request, *drive.Metadata) bool { return true }

func (s *directStrategy) Attempt(ctx context.Context, req Request, meta *drive.Metadata) (*Result, error) {
	cand, err := s.client.Get(ctx, downloadURL(req.FileID, false))
	if err != nil {
		return nil, &attemptError{msg: err.Error()}
	}
	if Acceptable(cand) {
		return newResult(cand, directContentType(cand, meta), req, meta), nil
	}

	status := cand.Status
	retry := Interstitial(cand)
	cand.Body.Close()
	if !retry {
		return nil, &attemptError{msg: "direct download rejected", status: status}
	}

	cand, err = s.client.Get(ctx, altDownloadURL(req.FileID))
	if err != nil {
		return nil, &attemptError{msg: err.Error(), status: status}
	}
	if !Acceptable(cand) {
		status = cand.Status
		cand.Body.Close()
		return nil, &attemptError{msg: "alternate download rejected", status: status}
	}
	return newResult(cand, directContentType(cand, meta), req, meta), nil
}

// confirmStrategy retries the download with the explicit confirmation
// parameter that bypasses the large-file warning page.
type confirmStrategy struct {
	client *Client
}

func (s *confirmStrategy) Name() string { return "confirm-token" }

func (s *confirmStrategy) Applies(req Request, meta *drive.Metadata) bool {
	return !meta.NativeApp
}

func (s *confirmStrategy) Attempt(ctx context.Context, req Request, meta *drive.Metadata) (*Result, error) {
	cand, err := s.client.Get(ctx, downloadURL(req.FileID, true))
	if err != nil {
		return nil, &attemptError{msg: err.Error()}
	}
	if !Acceptable(cand) {
		status := cand.Status
		cand.Body.Close()
		return nil, &attemptError{msg: "confirmed download rejected", status: status}
	}
	return newResult(cand, directContentType(cand, meta), req, meta), nil
}

// viewerRedirectStrategy hands the caller the upstream's own viewer page
// when every content path failed, so the result is always actionable.
type viewerRedirectStrategy struct {
	enabled bool
}

func (s *viewerRedirectStrategy) Name() string { return "viewer-redirect" }

func (s *viewerRedirectStrategy) Applies(Request, *drive.Metadata) bool { return s.enabled }

func (s *viewerRedirectStrategy) Attempt(_ context.Context, req Request, _ *drive.Metadata) (*Result, error) {
	return &Result{RedirectURL: ViewerURL(req.FileID)}, nil
}

func newResult(cand *Candidate, contentType string, req Request, meta *drive.Metadata) *Result {
	length := cand.Length
	if !cand.Exact {
		length = -1
	}
	return &Result{
		Body:        cand.Body,
		ContentType: contentType,
		Filename:    naming.FileName(meta.Name, contentType, req.Format),
		Length:      length,
	}
}

func directContentType(cand *Candidate, meta *drive.Metadata) string {
	if cand.ContentType != "" {
		return cand.ContentType
	}
	if meta.MIMEType != "" {
		return meta.MIMEType
	}
	return naming.GenericContentType
}

func downloadURL(fileID string, confirm bool) string {
	u := fmt.Sprintf("%s?id=%s&export=download&authuser=0", config.DownloadBase, url.QueryEscape(fileID))
	if confirm {
		u += "&confirm=t"
	}
	return u
}

func altDownloadURL(fileID string) string {
	return fmt.Sprintf("%s?export=download&id=%s", config.AltDownloadBase, url.QueryEscape(fileID))
}

func exportURL(fileID, mimeType, format string) string {
	if editor := naming.EditorPath(mimeType); editor != "" {
		return fmt.Sprintf("%s/%s/d/%s/export?format=%s",
			config.ExportBase, editor, url.PathEscape(fileID), url.QueryEscape(format))
	}

	// Native types without a docs editor path export through the API.
	endpoint := config.DriveAPIEndpoint
	if endpoint == "" {
		endpoint = "https://www.googleapis.com/drive/v3/"
	}
	u := fmt.Sprintf("%sfiles/%s/export?mimeType=%s",
		strings.TrimSuffix(endpoint, "/")+"/", url.PathEscape(fileID), url.QueryEscape(naming.MIMEForFormat(format)))
	if config.DriveAPIKey != "" {
		u += "&key=" + url.QueryEscape(config.DriveAPIKey)
	}
	return u
}

func printURL(fileID string) string {
	return fmt.Sprintf("%s/%s?format=pdf", config.PrintBase, url.PathEscape(fileID))
}

func previewURL(fileID string) string {
	return fmt.Sprintf("%s/d/%s/preview", config.PreviewBase, url.PathEscape(fileID))
}

// ViewerURL is the upstream's human-facing viewer page for a file; the
// redirect fallback target and the metadata scrape source.
func ViewerURL(fileID string) string {
	return fmt.Sprintf("%s/d/%s/view", config.ViewerBase, url.PathEscape(fileID))
}
