package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/serpscout/serpscout/cache"
	"github.com/serpscout/serpscout/models"
	"github.com/serpscout/serpscout/scraper"
	"github.com/serpscout/serpscout/structure"
)

// Webpage returns a handler for POST /api/v1/scrape/webpage.
//
// Flow:
//  1. Parse & validate request, apply defaults.
//  2. Cache lookup when the caller opted in via max_age_ms.
//  3. PageScraper.Scrape — policy gate, rate limit, session, structuring.
//  4. Build response, fill timing, store in cache, return 200.
func Webpage(ps *scraper.PageScraper, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.WebpageRequest
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

		// ── 2. Cache lookup ─────────────────────────────────────────
		cacheKey := cache.Key(req.URL, req.OutputFormat, req.ExtractMode)
		if cc != nil && req.MaxAge > 0 {
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				// The stored entry is shared across hits; annotate a copy
				// so concurrent hits do not race and the entry's own
				// timing stays untouched.
				resp := *cached
				resp.CacheStatus = "hit"
				resp.Timing = models.TimingInfo{
					TotalMs: time.Since(totalStart).Milliseconds(),
				}
				c.JSON(http.StatusOK, &resp)
				return
			}
		}

		// ── 3. Scrape ───────────────────────────────────────────────
		result, err := ps.Scrape(c.Request.Context(), req.URL, scraper.PageOptions{
			Mode:        structure.Mode(req.OutputFormat),
			CSSSelector: req.CSSSelector,
			ArticleMode: req.ExtractMode == "article",
		})
		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
			})
			return
		}

		// ── 4. Respond, caching on the way out ──────────────────────
		resp := resultToResponse(result)
		resp.Timing = models.TimingInfo{
			TotalMs:     time.Since(totalStart).Milliseconds(),
			SessionMs:   result.SessionMs,
			StructureMs: result.StructureMs,
		}

		if cc != nil && req.MaxAge > 0 {
			stored := *resp
			cc.Set(cacheKey, &stored)
			resp.CacheStatus = "miss"
		}

		c.JSON(http.StatusOK, resp)
	}
}

// resultToResponse lifts a scraper result into the API response shape.
func resultToResponse(result *scraper.ScrapeResult) *models.ScrapeResponse {
	return &models.ScrapeResponse{
		Success:     true,
		Target:      result.Target,
		Timestamp:   result.Timestamp,
		Title:       result.Title,
		SourceURL:   result.SourceURL,
		StatusText:  result.StatusText,
		ResultStats: result.ResultStats,
		Content:     result.Content,
	}
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.ScrapeResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeInvalidTarget:
		return http.StatusBadRequest // 400
	case models.ErrCodePolicyViolation:
		return http.StatusForbidden // 403
	case models.ErrCodeNavigation, models.ErrCodeCaptchaUnresolved:
		return http.StatusBadGateway // 502
	case models.ErrCodeResultsTimeout, models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
