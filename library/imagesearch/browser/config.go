package browser

import "time"

// Config controls the headless Chrome session and the DOM probing
// strategy. Selector lists are ordered: each is tried until one yields a
// usable element, so Google layout changes can be absorbed by
// configuration instead of code.
type Config struct {
	// ChromePath overrides binary discovery when set.
	ChromePath string

	UserAgent    string
	WindowWidth  int
	WindowHeight int

	// ConsentSelector matches Google's cookie-consent accept button.
	// Its absence on the page is a no-op, not an error.
	ConsentSelector string

	// ThumbnailSelectors locate clickable result thumbnails.
	ThumbnailSelectors []string

	// FullImageSelectors locate the enlarged image in the preview panel
	// after a thumbnail click.
	FullImageSelectors []string

	// SourceLinkSelector locates the website link next to the preview.
	SourceLinkSelector string

	// ShowMoreSelector matches the "Show more results" control used when
	// scrolling stops loading new content.
	ShowMoreSelector string

	PageSettle   time.Duration
	ClickSettle  time.Duration
	ConsentWait  time.Duration
	ScrollSettle time.Duration
}

// DefaultConfig returns the selector set and timings known to work
// against Google Images.
func DefaultConfig() Config {
	return Config{
		UserAgent:    "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		WindowWidth:  1920,
		WindowHeight: 1080,

		ConsentSelector: "#L2AGLb",
		ThumbnailSelectors: []string{
			"img[data-src]",
			"img[src*='gstatic']",
			"div[data-tbnid] img",
		},
		FullImageSelectors: []string{
			"img.n3VNCb",
			"img.iPVvYb",
			"img[src*='http']:not([src*='gstatic']):not([src*='encrypted'])",
			"div[data-tbnid] img[src*='http']",
		},
		SourceLinkSelector: "div.fxgdke a",
		ShowMoreSelector:   "input[value*='Show more']",

		PageSettle:   3 * time.Second,
		ClickSettle:  2 * time.Second,
		ConsentWait:  3 * time.Second,
		ScrollSettle: 2 * time.Second,
	}
}
