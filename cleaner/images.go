package cleaner

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/use-agent/distill/models"
)

// ImageFunc produces an ordered sequence of relevant image references from a
// parsed document. The scraper treats it as a black box; RelevantImages is
// the shipped default.
type ImageFunc func(doc *goquery.Document, sourceURL string) []models.Image

// maxImages caps how many references one page contributes.
const maxImages = 10

// imgMatcher is compiled once; lazy-loaded images often carry data-src
// instead of src.
var imgMatcher = cascadia.MustCompile("img[src], img[data-src]")

// RelevantImages harvests image references from doc, most relevant first.
//
// Relevance is heuristic: images flagged as hero/header material by their
// class or id rank highest, then in-content images, then anything with large
// declared dimensions. Tiny images (declared under 64px) and data URIs are
// dropped. Ordering is stable so identical documents yield identical output.
func RelevantImages(doc *goquery.Document, sourceURL string) []models.Image {
	images := []models.Image{}

	base, err := url.Parse(sourceURL)
	if err != nil {
		return images
	}

	type scored struct {
		img   models.Image
		score int
	}
	var candidates []scored
	seen := make(map[string]struct{})

	doc.FindMatcher(imgMatcher).Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			src, _ = s.Attr("data-src")
		}
		if src == "" {
			return
		}

		resolved, err := base.Parse(src)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}

		absURL := resolved.String()
		if _, dup := seen[absURL]; dup {
			return
		}
		seen[absURL] = struct{}{}

		w := dimension(s, "width")
		h := dimension(s, "height")
		if (w > 0 && w < 64) || (h > 0 && h < 64) {
			return
		}

		alt, _ := s.Attr("alt")
		candidates = append(candidates, scored{
			img:   models.Image{Src: absURL, Alt: strings.TrimSpace(alt)},
			score: relevanceScore(s, w, h),
		})
	})

	// Stable sort keeps document order within equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	for _, c := range candidates {
		images = append(images, c.img)
		if len(images) == maxImages {
			break
		}
	}
	return images
}

// relevanceScore ranks an image by its markup context and declared size.
func relevanceScore(s *goquery.Selection, w, h int) int {
	marker := imageMarker(s)

	switch {
	case containsAny(marker, "hero", "header", "banner", "featured", "cover"):
		return 4
	case containsAny(marker, "main", "content", "article", "body", "post"):
		return 3
	case w >= 640 || h >= 480:
		return 2
	case w >= 150 || h >= 150:
		return 1
	default:
		return 0
	}
}

// imageMarker gathers class/id text from the img and its two nearest
// ancestors, lowercased for keyword matching.
func imageMarker(s *goquery.Selection) string {
	var parts []string
	node := s
	for i := 0; i < 3 && node.Length() > 0; i++ {
		cls, _ := node.Attr("class")
		id, _ := node.Attr("id")
		parts = append(parts, cls, id)
		node = node.Parent()
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// dimension parses a numeric width/height attribute, tolerating a "px" suffix.
// Returns 0 when absent or non-numeric (e.g. percentages).
func dimension(s *goquery.Selection, attr string) int {
	v, ok := s.Attr(attr)
	if !ok {
		return 0
	}
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
