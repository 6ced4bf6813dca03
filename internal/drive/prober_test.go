package drive

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"drivegate/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// newTestProber builds a prober whose Drive API and viewer page both resolve
// to the given handler.
func newTestProber(t *testing.T, handler http.Handler) *Prober {
	t.Helper()

	server := httptest.NewServer(handler)

	origViewer := config.ViewerBase
	config.ViewerBase = server.URL + "/file"
	t.Cleanup(func() {
		server.Close()
		config.ViewerBase = origViewer
	})

	service, err := drivev3.NewService(context.Background(),
		option.WithoutAuthentication(),
		option.WithEndpoint(server.URL))
	require.NoError(t, err)

	return NewProberWithService(service)
}

func TestProbeSuccess(t *testing.T) {
	prober := newTestProber(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/plain42" {
			http.NotFound(w, r)
			return
		}
		assert.NotEmpty(t, r.URL.Query().Get("fields"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "plain42",
			"name": "slides.pdf",
			"mimeType": "application/pdf",
			"size": "2048",
			"capabilities": {"canDownload": true}
		}`)
	}))

	meta := prober.Probe(context.Background(), "plain42")

	assert.Equal(t, "plain42", meta.ID)
	assert.Equal(t, "slides.pdf", meta.Name)
	assert.Equal(t, "application/pdf", meta.MIMEType)
	assert.Equal(t, int64(2048), meta.Size)
	assert.True(t, meta.CanDownload)
	assert.False(t, meta.ViewOnly)
	assert.False(t, meta.NativeApp)
	assert.False(t, meta.Degraded)
	assert.Empty(t, meta.ExportOptions)
}

func TestProbeNativeDocument(t *testing.T) {
	prober := newTestProber(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "sheet7",
			"name": "Budget",
			"mimeType": "application/vnd.google-apps.spreadsheet",
			"capabilities": {"canDownload": true}
		}`)
	}))

	meta := prober.Probe(context.Background(), "sheet7")

	assert.True(t, meta.NativeApp)
	require.NotEmpty(t, meta.ExportOptions)
	assert.Equal(t, "xlsx", meta.ExportOptions[0])
}

func TestProbeViewOnlyWhenDownloadDisabled(t *testing.T) {
	prober := newTestProber(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "locked1",
			"name": "Handbook.pdf",
			"mimeType": "application/pdf",
			"capabilities": {"canDownload": false}
		}`)
	}))

	meta := prober.Probe(context.Background(), "locked1")

	assert.False(t, meta.CanDownload)
	assert.True(t, meta.ViewOnly)
	assert.False(t, meta.Degraded)
}

func TestProbeDegradedScrape(t *testing.T) {
	prober := newTestProber(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files/hidden9":
			http.Error(w, `{"error": {"code": 403}}`, http.StatusForbidden)
		case "/file/d/hidden9/view":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><head><title>Quarterly Report - Google Drive</title></head>`+
				`<body><div class="drive-viewer"></div></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))

	meta := prober.Probe(context.Background(), "hidden9")

	assert.True(t, meta.Degraded)
	assert.True(t, meta.ViewOnly)
	assert.Equal(t, "Quarterly Report", meta.Name)
	assert.Equal(t, "application/pdf", meta.MIMEType)
}

func TestProbeDegradedScrapeWithoutViewerMarkers(t *testing.T) {
	prober := newTestProber(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/file/d/mystery2/view":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><head><title>archive.tar.gz - Google Drive</title></head><body></body></html>`)
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))

	meta := prober.Probe(context.Background(), "mystery2")

	assert.True(t, meta.Degraded)
	assert.Equal(t, "archive.tar.gz", meta.Name)
	// No viewer markers on the page, so the type stays unknown.
	assert.Empty(t, meta.MIMEType)
}

func TestProbeDegradedScrapeUnavailable(t *testing.T) {
	prober := newTestProber(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))

	meta := prober.Probe(context.Background(), "ghost5")

	assert.True(t, meta.Degraded)
	assert.Equal(t, "file", meta.Name)
	assert.Empty(t, meta.MIMEType)
	assert.True(t, meta.ViewOnly)
}
