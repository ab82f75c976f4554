package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagegrab/models"
)

// Crawler is the engine behind the crawl endpoints. *crawler.Crawler
// implements it.
type Crawler interface {
	Execute(ctx context.Context, req models.CrawlRequest) ([]models.ResourceItem, error)
	Stats() models.SessionStats
}

// notFoundMessages is the 404 error text per resource kind on /crawl.
var notFoundMessages = map[models.ResourceKind]string{
	models.KindImage: "No images found",
	models.KindVideo: "No videos found",
	models.KindAudio: "No audio found",
	models.KindText:  "No text found",
}

// Crawl returns a handler for POST /crawl.
//
// Results are always returned under "images", whatever the resource kind,
// so existing clients keep working.
func Crawl(cr Crawler, env string) gin.HandlerFunc {
	return crawlEndpoint{
		crawler: cr,
		env:     env,
		field:   "images",
		notFound: func(kind models.ResourceKind) string {
			if msg, ok := notFoundMessages[kind]; ok {
				return msg
			}
			return "No resources found"
		},
	}.handle
}

// CrawlHTML returns a handler for POST /crawlHtml. The resource kind is
// fixed to text and results are returned under "html".
func CrawlHTML(cr Crawler, env string) gin.HandlerFunc {
	return crawlEndpoint{
		crawler:   cr,
		env:       env,
		field:     "html",
		fixedKind: models.KindText,
		notFound:  func(models.ResourceKind) string { return "No text content found" },
	}.handle
}

type crawlEndpoint struct {
	crawler   Crawler
	env       string
	field     string
	fixedKind models.ResourceKind
	notFound  func(models.ResourceKind) string
}

// handle runs one crawl:
//  1. Parse the body. An empty body is an empty payload, so a missing URL
//     reports "URL is required" like any other.
//  2. Crawler.Execute validates, crawls and extracts.
//  3. Map the result: items → 200, none → 404, error → by code.
func (e crawlEndpoint) handle(c *gin.Context) {
	start := time.Now()

	// ── 1. Parse request ────────────────────────────────────────
	var payload models.CrawlPayload
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	req := payload.ToCrawlRequest()
	if e.fixedKind != "" {
		req.Kind = e.fixedKind
	}

	// ── 2. Crawl ────────────────────────────────────────────────
	items, err := e.crawler.Execute(c.Request.Context(), req)
	if err != nil {
		slog.Error("crawl failed",
			"url", req.URL,
			"kind", req.Kind,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		respondError(c, err, e.env)
		return
	}

	// ── 3. Respond ──────────────────────────────────────────────
	if len(items) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": e.notFound(req.Kind),
			e.field: []models.ResourceItem{},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{e.field: items})
}

// respondError maps a CrawlError to its HTTP status and writes the error
// body. The wrapped cause is only exposed in development.
func respondError(c *gin.Context, err error, env string) {
	var crawlErr *models.CrawlError
	if !errors.As(err, &crawlErr) {
		crawlErr = models.NewCrawlError(models.ErrCodeInternal, err.Error(), err)
	}

	status := mapErrorToStatus(crawlErr)
	resp := models.ErrorResponse{Error: crawlErr.Message}
	if status >= http.StatusInternalServerError && env == "development" {
		resp.Details = crawlErr.Error()
	}
	c.JSON(status, resp)
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.CrawlError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput, models.ErrCodeUnsupportedKind:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeBusy:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}
