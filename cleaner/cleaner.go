// Package cleaner turns the raw HTML returned by the reader service into the
// final scrape payload: normalized markdown, relevant images, and a title.
package cleaner

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/distill/models"
)

// Cleaner runs the transformation pipeline:
//
//	Stage 1 (readability): isolate the main article body, keep the title
//	Stage 2 (markdown):    convert the body fragment to Markdown
//	Stage 3 (images):      hand the parsed fragment to the image collaborator
//
// The converter is created once and reused across all requests
// (goroutine-safe), so one Cleaner serves any number of concurrent scrapes.
type Cleaner struct {
	mdConverter *converter.Converter
	imageFn     ImageFunc
}

// NewCleaner initialises a Cleaner with a pre-configured Markdown converter
// and the default image collaborator.
func NewCleaner() *Cleaner {
	return &Cleaner{
		mdConverter: newMarkdownConverter(),
		imageFn:     RelevantImages,
	}
}

// WithImageFunc swaps the image-relevance collaborator.
func (c *Cleaner) WithImageFunc(fn ImageFunc) *Cleaner {
	if fn != nil {
		c.imageFn = fn
	}
	return c
}

// Transform converts rawHTML into a complete ScrapeOutcome.
//
// The only error is PARSE_FAILED, returned when the extracted fragment cannot
// be minimally parsed or rendered; a lossy readability pass is not an error.
// Markdown preserves the document order of the extracted body; the image
// sequence preserves the collaborator's order.
func (c *Cleaner) Transform(rawHTML string, sourceURL string) (*models.ScrapeOutcome, error) {
	article, _ := extractArticle(rawHTML, sourceURL)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeParseFailed,
			"parse extracted content", err)
	}

	markdown, err := toMarkdown(c.mdConverter, article.Content, sourceURL)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeParseFailed,
			"markdown conversion failed", err)
	}

	// Readability extracts the better title, but on raw-HTML fallback it is
	// empty; scan the raw document as the safety net.
	title := article.Title
	if title == "" {
		title = pageTitle(rawHTML)
	}

	images := c.imageFn(doc, sourceURL)
	if images == nil {
		images = []models.Image{}
	}

	return &models.ScrapeOutcome{
		Markdown: strings.TrimSpace(markdown),
		Images:   images,
		Title:    title,
	}, nil
}
