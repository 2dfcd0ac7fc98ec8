package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/serpscout/serpscout/models"
	"github.com/serpscout/serpscout/scraper"
	"github.com/serpscout/serpscout/structure"
)

// Search returns a handler for POST /api/v1/scrape/search.
//
// Search results are never cached: a results page is a moving target and a
// stale copy is worse than a slow fresh one.
func Search(ss *scraper.SearchScraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidTarget,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		result, err := ss.Search(c.Request.Context(), req.Keyword, structure.Mode(req.OutputFormat))
		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
			})
			return
		}

		resp := resultToResponse(result)
		resp.Timing = models.TimingInfo{
			TotalMs:     time.Since(totalStart).Milliseconds(),
			SessionMs:   result.SessionMs,
			StructureMs: result.StructureMs,
		}

		c.JSON(http.StatusOK, resp)
	}
}
