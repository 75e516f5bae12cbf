// Package scraper ties the reader client and the cleaner together into one
// scrape operation per target URL.
package scraper

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/use-agent/distill/cleaner"
	"github.com/use-agent/distill/config"
	"github.com/use-agent/distill/models"
	"github.com/use-agent/distill/reader"
)

// Scraper scrapes a single target URL through the reader service. The value
// is immutable after construction, so distinct Scrapers may share the same
// session, reader client and cleaner across goroutines.
type Scraper struct {
	link    string
	client  *reader.Client
	cleaner *cleaner.Cleaner
}

// New builds a Scraper for link. session is the caller-owned shared HTTP
// client (nil for a private default); its lifetime is managed by the caller.
func New(link string, session *http.Client, cfg config.ReaderConfig) *Scraper {
	return &Scraper{
		link:    link,
		client:  reader.New(cfg, session),
		cleaner: cleaner.NewCleaner(),
	}
}

// WithClient substitutes a pre-built reader client. Scrapers created for many
// targets should share one client so they also share its rate limiter.
func (s *Scraper) WithClient(c *reader.Client) *Scraper {
	s.client = c
	return s
}

// WithCleaner substitutes a pre-built cleaner (shared converter state, or a
// custom image collaborator).
func (s *Scraper) WithCleaner(c *cleaner.Cleaner) *Scraper {
	s.cleaner = c
	return s
}

// Scrape fetches the page through the reader service and transforms it into
// markdown, images, and a title.
//
// Best-effort contract: request and parse failures are logged and degrade to
// the empty (but structurally complete) outcome with a nil error, so batch
// callers keep going. The single loud case is rate limiting that survived all
// retries — that error is returned alongside the empty outcome, because the
// surrounding pipeline may want to switch strategies or escalate.
func (s *Scraper) Scrape(ctx context.Context) (*models.ScrapeOutcome, error) {
	rawHTML, err := s.client.Fetch(ctx, s.link)
	if err != nil {
		if models.IsRateLimited(err) {
			return models.EmptyOutcome(), err
		}
		slog.Error("scrape failed, returning empty outcome",
			"url", s.link, "code", models.ErrCode(err), "error", err)
		return models.EmptyOutcome(), nil
	}

	outcome, err := s.cleaner.Transform(rawHTML, s.link)
	if err != nil {
		slog.Error("transform failed, returning empty outcome",
			"url", s.link, "code", models.ErrCode(err), "error", err)
		return models.EmptyOutcome(), nil
	}

	return outcome, nil
}

// Link returns the target URL this scraper was built for.
func (s *Scraper) Link() string {
	return s.link
}
