package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleMetadata returns the metadata record for a file. The probe never
// hard-fails, so this endpoint always answers 200 with at least a degraded
// record for a well-formed request.
func HandleMetadata(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileID, ok := requestedFileID(c)
		if !ok {
			return
		}

		meta := lookupMetadata(c.Request.Context(), deps, fileID)
		if meta.ExportOptions == nil {
			meta.ExportOptions = []string{}
		}
		c.JSON(http.StatusOK, meta)
	}
}
