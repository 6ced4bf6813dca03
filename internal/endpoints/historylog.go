package endpoints

import (
	"net/http"
	"strconv"

	"drivegate/internal/history"

	"github.com/gin-gonic/gin"
)

// HistoryResponse lists recent retrieval records.
type HistoryResponse struct {
	Retrievals []history.Record `json:"retrievals"`
}

// HandleHistory returns the most recent retrieval outcomes.
func HandleHistory(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.History == nil {
			c.JSON(http.StatusOK, HistoryResponse{Retrievals: []history.Record{}})
			return
		}

		limit := 50
		if raw := c.Query("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		records, err := deps.History.Recent(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch retrieval history"})
			return
		}
		if records == nil {
			records = []history.Record{}
		}
		c.JSON(http.StatusOK, HistoryResponse{Retrievals: records})
	}
}
