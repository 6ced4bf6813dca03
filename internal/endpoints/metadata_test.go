package endpoints

import (
	"encoding/json"
	"net/http"
	"testing"

	"drivegate/internal/drive"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandleMetadata(t *testing.T) {
	prober := new(mockProber)
	prober.On("Probe", mock.Anything, "sheet7").Return(&drive.Metadata{
		ID:            "sheet7",
		Name:          "Budget",
		MIMEType:      "application/vnd.google-apps.spreadsheet",
		CanDownload:   true,
		NativeApp:     true,
		ExportOptions: []string{"xlsx", "pdf", "ods", "csv", "tsv"},
	})

	router := newTestRouter(Deps{Prober: prober, Chain: new(mockRetriever)})
	w := serve(router, "/api/metadata?id=sheet7")

	assert.Equal(t, http.StatusOK, w.Code)

	var meta drive.Metadata
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, "Budget", meta.Name)
	assert.True(t, meta.NativeApp)
	assert.Equal(t, []string{"xlsx", "pdf", "ods", "csv", "tsv"}, meta.ExportOptions)
}

func TestHandleMetadataEmptyExportOptions(t *testing.T) {
	prober := new(mockProber)
	prober.On("Probe", mock.Anything, "plain42").Return(plainMeta("plain42"))

	router := newTestRouter(Deps{Prober: prober, Chain: new(mockRetriever)})
	w := serve(router, "/api/metadata?id=plain42")

	assert.Equal(t, http.StatusOK, w.Code)
	// exportOptions serializes as an empty array, never null.
	assert.Contains(t, w.Body.String(), `"exportOptions":[]`)
}

func TestHandleMetadataBadInput(t *testing.T) {
	router := newTestRouter(Deps{Prober: new(mockProber), Chain: new(mockRetriever)})
	w := serve(router, "/api/metadata")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
