package models

// Image is one image reference harvested from a page, with Src resolved to
// an absolute URL.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// ScrapeOutcome is the unified return type of a scrape: markdown content,
// relevant images in relevance order, and the page title.
//
// The outcome is always structurally complete. On any unrecoverable failure
// the scraper returns EmptyOutcome() — empty strings and an empty (non-nil)
// image slice — so callers never branch on missing fields.
type ScrapeOutcome struct {
	Markdown string  `json:"markdown"`
	Images   []Image `json:"images"`
	Title    string  `json:"title"`
}

// EmptyOutcome returns the canonical soft-failure outcome.
func EmptyOutcome() *ScrapeOutcome {
	return &ScrapeOutcome{Images: []Image{}}
}
