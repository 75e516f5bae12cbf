package cleaner

import "unicode/utf8"

// EstimateTokens provides a fast LLM token estimate for markdown output
// without importing tiktoken.
//
// Heuristic: utf8 rune count / 3. English text averages ~4 chars/token and
// CJK ~1.5, so dividing by 3 is a reasonable middle ground that slightly
// over-estimates for mostly-English pages.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	est := n / 3
	if est < 1 {
		return 1
	}
	return est
}
