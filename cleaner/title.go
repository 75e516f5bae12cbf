package cleaner

import (
	"strings"

	"golang.org/x/net/html"
)

// pageTitle scans raw HTML for a usable title: the <title> element first,
// then the first <h1>. Used when readability could not derive one.
func pageTitle(rawHTML string) string {
	if t := firstTagText(rawHTML, "title"); t != "" {
		return t
	}
	return firstTagText(rawHTML, "h1")
}

// firstTagText returns the trimmed text of the first occurrence of tag.
func firstTagText(rawHTML, tag string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == tag {
				if tokenizer.Next() == html.TextToken {
					return strings.TrimSpace(string(tokenizer.Text()))
				}
				return ""
			}
		}
	}
}
