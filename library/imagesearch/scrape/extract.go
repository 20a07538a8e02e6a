package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractPatterns are the independent textual patterns applied to the raw
// page text. Google inlines image URLs in several script-encoded shapes, so
// all matches are unioned before validation.
var extractPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"ou":"([^"]*)"`),
	regexp.MustCompile(`"data-src":"([^"]*)"`),
	regexp.MustCompile(`"src":"([^"]*)"`),
	regexp.MustCompile(`(?i)https?://[^"\s,\\]+\.(?:jpg|jpeg|png|gif|webp)(?:[^"\s,\\]*)?`),
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// skipMarkers flags URLs that point at thumbnail/CDN/avatar assets rather
// than content images.
var skipMarkers = []string{
	"gstatic.com", "ggpht.com", "googleusercontent.com", "encrypted-tbn",
	"logo", "icon", "avatar", "profile", "thumbnail",
}

// Length window for plausible image URLs. The lower bound admits minimal
// well-formed URLs such as "https://x.com/a.jpg".
const (
	minURLLen = 16
	maxURLLen = 2000
)

// ExtractImageURLs scans HTML or script text for embedded image URLs.
//
// All pattern matches plus <img> src/data-src attributes are unioned,
// normalized, validated, and deduplicated. The returned slice preserves
// first-seen order and is truncated to maxCandidates to bound downstream
// probe cost.
func ExtractImageURLs(text string, maxCandidates int) []string {
	seen := make(map[string]struct{})
	var candidates []string

	add := func(raw string) {
		cleaned, ok := normalizeCandidate(raw)
		if !ok {
			return
		}
		if _, dup := seen[cleaned]; dup {
			return
		}
		seen[cleaned] = struct{}{}
		candidates = append(candidates, cleaned)
	}

	for _, pattern := range extractPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			raw := match[0]
			if len(match) > 1 {
				raw = match[1]
			}
			add(raw)
		}
	}

	// A DOM pass catches plain <img> tags the script patterns miss.
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
		doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
			if src, ok := sel.Attr("src"); ok {
				add(src)
			}
			if src, ok := sel.Attr("data-src"); ok {
				add(src)
			}
		})
	}

	if maxCandidates > 0 && len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	return candidates
}

// normalizeCandidate unescapes and validates a raw match, returning the
// cleaned URL and whether it survived filtering.
func normalizeCandidate(raw string) (string, bool) {
	cleaned := strings.NewReplacer(
		"\\u003d", "=",
		"\\u0026", "&",
		"\\/", "/",
	).Replace(raw)

	if unescaped, err := url.QueryUnescape(cleaned); err == nil {
		cleaned = unescaped
	}

	if len(cleaned) < minURLLen || len(cleaned) >= maxURLLen {
		return "", false
	}

	parsed, err := url.Parse(cleaned)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", false
	}

	lower := strings.ToLower(cleaned)

	var hasImageExt bool
	for _, ext := range imageExtensions {
		if strings.Contains(lower, ext) {
			hasImageExt = true
			break
		}
	}
	if !hasImageExt {
		return "", false
	}

	for _, marker := range skipMarkers {
		if strings.Contains(lower, marker) {
			return "", false
		}
	}

	return cleaned, true
}
