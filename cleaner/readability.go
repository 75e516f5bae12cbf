package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum TextContent length (in characters) for
// readability output to be considered valid. Below this threshold we assume
// the algorithm failed to locate the main content and fall back to raw HTML.
const minContentLength = 50

// extractArticle runs the Mozilla Readability algorithm on rawHTML and
// returns the best-effort article body plus whether the extraction was used.
//
// A lossy or failed extraction must never abort the scrape, so every failure
// mode degrades to the raw HTML instead:
//   - unparseable source URL        → raw HTML
//   - readability.FromReader error  → raw HTML
//   - extracted text < 50 chars     → raw HTML
//
// On fallback the returned Article has an empty Title; the caller fills it
// from the raw document.
func extractArticle(rawHTML string, sourceURL string) (readability.Article, bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("readability: invalid source URL, using raw HTML",
			"url", sourceURL, "error", err,
		)
		return rawArticle(rawHTML), false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("readability: extraction failed, using raw HTML",
			"url", sourceURL, "error", err,
		)
		return rawArticle(rawHTML), false
	}

	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		slog.Warn("readability: extracted content too short, using raw HTML",
			"url", sourceURL, "length", len(article.TextContent),
		)
		return rawArticle(rawHTML), false
	}

	return article, true
}

// rawArticle wraps raw HTML into an Article so the pipeline proceeds
// uniformly whether or not readability succeeded.
func rawArticle(rawHTML string) readability.Article {
	return readability.Article{
		Content:     rawHTML,
		TextContent: rawHTML,
	}
}
