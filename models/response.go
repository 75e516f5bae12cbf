package models

// ScrapeResponse is the response for POST /api/v1/scrape.
//
// A soft failure (the reader or the transformer gave up on the page) is still
// Success=true with an empty outcome: the scrape endpoint mirrors the
// library's best-effort contract. Error is populated only for loud failures
// such as invalid input or rate-limit exhaustion.
type ScrapeResponse struct {
	// Success indicates whether the request itself was processed.
	Success bool `json:"success"`

	// Markdown is the normalized markdown rendition of the page body.
	Markdown string `json:"markdown"`

	// Images are the relevant image references, most relevant first.
	Images []Image `json:"images"`

	// Title is the extracted page title.
	Title string `json:"title"`

	// SourceURL echoes the scraped URL.
	SourceURL string `json:"source_url"`

	// TokenEstimate is the approximate LLM token count of Markdown.
	TokenEstimate int `json:"token_estimate"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo reports the time spent serving the request.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds, including any
	// backoff waits spent on rate-limited reader calls.
	TotalMs int64 `json:"total_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
