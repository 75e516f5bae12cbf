package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/distill/cleaner"
	"github.com/use-agent/distill/config"
	"github.com/use-agent/distill/models"
	"github.com/use-agent/distill/scraper"
)

// Scrape returns a handler for POST /api/v1/scrape.
//
// Flow:
//  1. Parse & validate request, apply defaults.
//  2. Build a per-target Scraper on the shared session and run it under the
//     request deadline.
//  3. Soft failures come back as an empty outcome with 200; rate-limit
//     exhaustion maps to 429 so callers can slow down or switch strategies.
func Scrape(session *http.Client, readerCfg config.ReaderConfig) gin.HandlerFunc {
	// One cleaner for all requests; its converter is goroutine-safe.
	cl := cleaner.NewCleaner()

	return func(c *gin.Context) {
		start := time.Now()

		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success: false,
				Images:  []models.Image{},
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		ctx, cancel := context.WithTimeout(c.Request.Context(),
			time.Duration(req.Timeout)*time.Second)
		defer cancel()

		s := scraper.New(req.URL, session, readerCfg).WithCleaner(cl)
		outcome, err := s.Scrape(ctx)
		if err != nil {
			respondError(c, err, start)
			return
		}

		c.JSON(http.StatusOK, models.ScrapeResponse{
			Success:       true,
			Markdown:      outcome.Markdown,
			Images:        outcome.Images,
			Title:         outcome.Title,
			SourceURL:     req.URL,
			TokenEstimate: cleaner.EstimateTokens(outcome.Markdown),
			Timing: models.TimingInfo{
				TotalMs: time.Since(start).Milliseconds(),
			},
		})
	}
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, start time.Time) {
	scrapeErr, ok := err.(*models.ScrapeError)
	if !ok {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.ScrapeResponse{
		Success: false,
		Images:  []models.Image{},
		Error:   scrapeErr.ToDetail(),
		Timing: models.TimingInfo{
			TotalMs: time.Since(start).Milliseconds(),
		},
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
