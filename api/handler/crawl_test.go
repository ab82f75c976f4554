package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/pagegrab/models"
)

// stubCrawler returns canned results and records the last request.
type stubCrawler struct {
	items  []models.ResourceItem
	err    error
	last   models.CrawlRequest
	calls  int
	active int
}

func (s *stubCrawler) Execute(ctx context.Context, req models.CrawlRequest) ([]models.ResourceItem, error) {
	s.calls++
	s.last = req
	if err := models.ValidateURL(req.URL); err != nil {
		return nil, err
	}
	return s.items, s.err
}

func (s *stubCrawler) Stats() models.SessionStats {
	return models.SessionStats{ActiveSessions: s.active}
}

func newTestEngine(cr Crawler, env string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/crawl", Crawl(cr, env))
	r.POST("/crawlHtml", CrawlHTML(cr, env))
	r.GET("/health", Health(cr, 2, time.Now()))
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCrawl_Images(t *testing.T) {
	cr := &stubCrawler{items: []models.ResourceItem{
		models.ImageRef{SourceURL: "https://example.com/a.jpg"},
	}}
	w := postJSON(t, newTestEngine(cr, "production"), "/crawl", map[string]any{
		"url":     "https://example.com",
		"keyword": "a",
		"async":   true,
		"scroll":  true,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"images":[{"sourceUrl":"https://example.com/a.jpg"}]}`, w.Body.String())

	assert.Equal(t, models.KindImage, cr.last.Kind)
	assert.Equal(t, models.WaitNetworkIdle, cr.last.Wait)
	assert.True(t, cr.last.Scroll)
	assert.Equal(t, "a", cr.last.Keyword)
}

func TestCrawl_VideoKind(t *testing.T) {
	cr := &stubCrawler{items: []models.ResourceItem{
		models.VideoRef{SourceURL: "https://www.youtube.com/embed/x", Origin: models.OriginEmbeddedFrame},
	}}
	w := postJSON(t, newTestEngine(cr, "production"), "/crawl", map[string]any{
		"url":          "https://example.com",
		"resourceType": "VIDEO",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.KindVideo, cr.last.Kind)
	assert.Equal(t, models.WaitDOMReady, cr.last.Wait)
	assert.JSONEq(t, `{"images":[{"sourceUrl":"https://www.youtube.com/embed/x","origin":"iframe"}]}`, w.Body.String())
}

func TestCrawl_EmptyResultIs404(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{"", "No images found"},
		{"image", "No images found"},
		{"video", "No videos found"},
		{"audio", "No audio found"},
		{"text", "No text found"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			cr := &stubCrawler{}
			w := postJSON(t, newTestEngine(cr, "production"), "/crawl", map[string]any{
				"url":          "https://example.com",
				"resourceType": tt.kind,
			})

			require.Equal(t, http.StatusNotFound, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.want, body["error"])
			assert.Equal(t, []any{}, body["images"])
		})
	}
}

func TestCrawl_BadInput(t *testing.T) {
	tests := []struct {
		name string
		body any
		want string
	}{
		{"missing url", map[string]any{"keyword": "x"}, "URL is required"},
		{"empty body", nil, "URL is required"},
		{"malformed url", map[string]any{"url": "not a url"}, "Invalid URL format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, newTestEngine(&stubCrawler{}, "production"), "/crawl", tt.body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, decode(t, w)["error"])
		})
	}
}

func TestCrawl_MalformedJSON(t *testing.T) {
	cr := &stubCrawler{}
	req := httptest.NewRequest(http.MethodPost, "/crawl", bytes.NewBufferString(`{"url":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newTestEngine(cr, "production").ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, cr.calls)
}

func TestCrawl_UnsupportedKind(t *testing.T) {
	cr := &stubCrawler{err: models.NewCrawlError(models.ErrCodeUnsupportedKind, `unsupported resource type "pdf"`, nil)}
	w := postJSON(t, newTestEngine(cr, "production"), "/crawl", map[string]any{
		"url":          "https://example.com",
		"resourceType": "pdf",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCrawl_FailureDetailsOnlyInDevelopment(t *testing.T) {
	navErr := models.NewCrawlError(models.ErrCodeNavigation, "Failed to load page: 404 Not Found", nil)

	w := postJSON(t, newTestEngine(&stubCrawler{err: navErr}, "production"), "/crawl", map[string]any{"url": "https://example.com"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Failed to load page: 404 Not Found", body["error"])
	assert.NotContains(t, body, "details")

	w = postJSON(t, newTestEngine(&stubCrawler{err: navErr}, "development"), "/crawl", map[string]any{"url": "https://example.com"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body = decode(t, w)
	assert.Equal(t, "NAVIGATION_FAILED: Failed to load page: 404 Not Found", body["details"])
}

func TestCrawl_UntypedErrorIs500(t *testing.T) {
	w := postJSON(t, newTestEngine(&stubCrawler{err: errors.New("boom")}, "production"), "/crawl", map[string]any{"url": "https://example.com"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "boom", decode(t, w)["error"])
}

func TestCrawlHTML_ForcesText(t *testing.T) {
	cr := &stubCrawler{items: []models.ResourceItem{
		models.TextBlock{Text: "Hello", TagName: "p", ClassNames: "lead"},
	}}
	w := postJSON(t, newTestEngine(cr, "production"), "/crawlHtml", map[string]any{
		"url":          "https://example.com",
		"resourceType": "image",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.KindText, cr.last.Kind)
	assert.JSONEq(t, `{"html":[{"text":"Hello","tag":"p","id":"","class":"lead"}]}`, w.Body.String())
}

func TestCrawlHTML_Empty(t *testing.T) {
	w := postJSON(t, newTestEngine(&stubCrawler{}, "production"), "/crawlHtml", map[string]any{"url": "https://example.com"})

	require.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, "No text content found", body["error"])
	assert.Equal(t, []any{}, body["html"])
}

func TestHealth(t *testing.T) {
	cr := &stubCrawler{active: 1}
	r := newTestEngine(cr, "production")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 1, resp.ActiveCrawls)
	assert.Equal(t, 2, resp.MaxConcurrent)

	cr.active = 2
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
}
