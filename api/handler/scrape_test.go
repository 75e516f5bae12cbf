package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/distill/config"
	"github.com/use-agent/distill/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newScrapeRouter(readerURL string) *gin.Engine {
	r := gin.New()
	r.POST("/scrape", Scrape(nil, config.ReaderConfig{
		ServerURL: readerURL,
		Timeout:   5 * time.Second,
	}))
	return r
}

func doScrape(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, models.ScrapeResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/scrape", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp models.ScrapeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, w.Body.String())
	}
	return w, resp
}

func TestScrapeHandler_Success(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Hello</title></head><body><h1>Hello</h1><p>A page with enough text to keep the extractor satisfied for this test.</p></body></html>`))
	}))
	defer upstream.Close()

	w, resp := doScrape(t, newScrapeRouter(upstream.URL), `{"url":"https://example.com/hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !resp.Success {
		t.Errorf("expected success, got error %+v", resp.Error)
	}
	if resp.Title != "Hello" {
		t.Errorf("expected title, got %q", resp.Title)
	}
	if !strings.Contains(resp.Markdown, "enough text") {
		t.Errorf("expected markdown content, got %q", resp.Markdown)
	}
	if resp.TokenEstimate == 0 {
		t.Error("expected a non-zero token estimate")
	}
	if resp.SourceURL != "https://example.com/hello" {
		t.Errorf("expected source url echoed, got %q", resp.SourceURL)
	}
}

func TestScrapeHandler_InvalidInput(t *testing.T) {
	w, resp := doScrape(t, newScrapeRouter("http://127.0.0.1:0"), `{"url":"not a url"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT error, got %+v", resp.Error)
	}
}

func TestScrapeHandler_SoftFailureStays200(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	w, resp := doScrape(t, newScrapeRouter(upstream.URL), `{"url":"https://example.com/gone"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("soft failure should stay 200, got %d", w.Code)
	}
	if !resp.Success {
		t.Errorf("soft failure should report success, got %+v", resp.Error)
	}
	if resp.Markdown != "" || resp.Title != "" || len(resp.Images) != 0 {
		t.Errorf("expected empty outcome, got %+v", resp)
	}
	if resp.Images == nil {
		t.Error("images must be present (empty array) on soft failure")
	}
}
