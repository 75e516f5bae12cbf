package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/use-agent/distill/backoff"
	"github.com/use-agent/distill/config"
	"github.com/use-agent/distill/models"
	"github.com/use-agent/distill/reader"
)

const articleHTML = `<html><head><title>Go Proverbs</title></head><body>
<article>
	<h1>Go Proverbs</h1>
	<p>Don't communicate by sharing memory, share memory by communicating.
	Concurrency is not parallelism. Channels orchestrate; mutexes serialize.
	The bigger the interface, the weaker the abstraction.</p>
	<img class="hero" src="/gopher.png" alt="gopher">
</article>
</body></html>`

func fastPolicy() backoff.Policy {
	return backoff.Policy{
		Base:        time.Millisecond,
		Floor:       time.Millisecond,
		Ceil:        10 * time.Millisecond,
		MaxAttempts: 5,
	}
}

func newScraper(link, readerURL string) *Scraper {
	cfg := config.ReaderConfig{ServerURL: readerURL, Timeout: 5 * time.Second}
	return New(link, nil, cfg).
		WithClient(reader.New(cfg, nil).WithPolicy(fastPolicy()))
}

func TestScrape_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, present := r.Header["Authorization"]; present {
			t.Error("expected no Authorization header without an API key")
		}
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer ts.Close()

	s := newScraper("https://example.com/go-proverbs", ts.URL)
	out, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Title != "Go Proverbs" {
		t.Errorf("expected title, got %q", out.Title)
	}
	if !strings.Contains(out.Markdown, "Concurrency is not parallelism") {
		t.Errorf("expected body text in markdown, got %q", out.Markdown)
	}
	if len(out.Images) == 0 || out.Images[0].Src != "https://example.com/gopher.png" {
		t.Errorf("expected resolved hero image, got %+v", out.Images)
	}
}

func TestScrape_Idempotent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer ts.Close()

	s := newScraper("https://example.com/go-proverbs", ts.URL)
	first, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("first scrape: %v", err)
	}
	second, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("second scrape: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical responses produced different outcomes:\n%+v\n%+v", first, second)
	}
}

func TestScrape_RequestFailureIsSoft(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	s := newScraper("https://example.com/down", ts.URL)
	out, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("non-429 failures must not surface, got %v", err)
	}
	if out.Markdown != "" || out.Title != "" || len(out.Images) != 0 {
		t.Errorf("expected empty outcome, got %+v", out)
	}
	if out.Images == nil {
		t.Error("empty outcome must keep a non-nil image slice")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected no retry on 500, got %d attempts", got)
	}
}

func TestScrape_RateLimitExhaustionIsLoud(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	s := newScraper("https://example.com/hot", ts.URL)
	out, err := s.Scrape(context.Background())
	if !models.IsRateLimited(err) {
		t.Fatalf("expected RATE_LIMITED to surface, got %v", err)
	}
	if got := calls.Load(); got != 5 {
		t.Errorf("expected full attempt budget of 5, got %d", got)
	}
	// Even the loud path hands back a structurally complete outcome.
	if out == nil || out.Images == nil {
		t.Errorf("expected empty-but-valid outcome alongside the error, got %+v", out)
	}
}

func TestScrape_RateLimitThenSuccess(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer ts.Close()

	s := newScraper("https://example.com/go-proverbs", ts.URL)
	out, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected exactly one retry, got %d attempts", got)
	}
	if out.Title != "Go Proverbs" {
		t.Errorf("outcome should reflect the successful response, got title %q", out.Title)
	}
}

func TestScrape_SharedSessionConcurrent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer ts.Close()

	session := ts.Client()
	cfg := config.ReaderConfig{ServerURL: ts.URL, Timeout: 5 * time.Second}

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			s := New("https://example.com/go-proverbs", session, cfg)
			_, err := s.Scrape(context.Background())
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Errorf("concurrent scrape on shared session failed: %v", err)
		}
	}
}
