// Package scrape implements the HTTP image search fallback: fetch a Google
// Images results page with browser-like headers and mine the HTML for
// direct image URLs.
package scrape

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Laisky/image-mcp/library/imagesearch"
	appLog "github.com/Laisky/image-mcp/library/log"
)

const (
	engineName = "google_images_scrape"

	// probeConcurrency bounds how many validation probes run at once.
	probeConcurrency = 4

	// candidateFactor controls how many extra candidates are extracted so
	// that probe failures can be compensated for.
	candidateFactor = 3
)

// Fetcher is the outbound HTTP capability the engine depends on.
type Fetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
	Probe(ctx context.Context, url string) (contentType string, err error)
}

// Engine is the HTTP+pattern-extraction search strategy.
type Engine struct {
	fetcher Fetcher
	logger  logSDK.Logger
}

// Option customises an Engine during construction.
type Option func(*Engine)

// WithLogger overrides the default named logger.
func WithLogger(logger logSDK.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine constructs the scrape engine around the given fetcher.
func NewEngine(fetcher Fetcher, opts ...Option) (*Engine, error) {
	if fetcher == nil {
		return nil, errors.New("fetcher is required")
	}

	e := &Engine{
		fetcher: fetcher,
		logger:  appLog.Logger.Named("imagesearch_scrape"),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Name implements imagesearch.Engine.
func (e *Engine) Name() string { return engineName }

// Available implements imagesearch.Engine. Plain HTTP has no runtime
// dependency beyond the network.
func (e *Engine) Available() bool { return true }

// searchURLs returns the candidate Google Images URL templates in the
// order they are attempted: the current `udm=2` format first, then the
// legacy `tbm=isch` one.
func searchURLs(query string) []string {
	encoded := url.QueryEscape(query)
	return []string{
		fmt.Sprintf("https://www.google.com/search?q=%s&udm=2&hl=en", encoded),
		fmt.Sprintf("https://www.google.com/search?q=%s&tbm=isch&hl=en", encoded),
	}
}

// SearchImages implements imagesearch.Engine.
//
// Candidates that fail the HEAD probe are still reported, marked
// unvalidated in the title: the fallback favors recall over precision
// since dropping them would frequently return nothing at all.
func (e *Engine) SearchImages(ctx context.Context, query string, maxResults int) ([]imagesearch.Result, error) {
	var body string
	var fetchErr error
	for _, searchURL := range searchURLs(query) {
		body, fetchErr = e.fetcher.FetchPage(ctx, searchURL)
		if fetchErr == nil {
			e.logger.Debug("fetched search page", zap.String("url", searchURL))
			break
		}
		e.logger.Debug("search url failed, trying next format",
			zap.String("url", searchURL), zap.Error(fetchErr))
	}
	if fetchErr != nil {
		return nil, errors.Wrap(fetchErr, "fetch google images page with any url format")
	}

	candidates := ExtractImageURLs(body, maxResults*candidateFactor)
	if len(candidates) == 0 {
		return nil, nil
	}

	validated := e.probeCandidates(ctx, candidates)

	results := make([]imagesearch.Result, 0, maxResults)
	for i, candidate := range candidates {
		if len(results) >= maxResults {
			break
		}
		results = append(results, buildResult(candidate, validated[i]))
	}

	e.logger.Info("scrape search completed",
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(results)))
	return results, nil
}

// probeCandidates validates every candidate with a short HEAD probe.
// Probes run concurrently but the returned slice keeps discovery order:
// validated[i] reports whether candidates[i] served an image content type.
func (e *Engine) probeCandidates(ctx context.Context, candidates []string) []bool {
	validated := make([]bool, len(candidates))

	var mu sync.Mutex
	var pool errgroup.Group
	pool.SetLimit(probeConcurrency)

	for i, candidate := range candidates {
		pool.Go(func() error {
			contentType, err := e.fetcher.Probe(ctx, candidate)
			ok := err == nil && strings.HasPrefix(contentType, "image/")
			if err != nil {
				e.logger.Debug("probe failed, keeping candidate unvalidated",
					zap.String("url", candidate), zap.Error(err))
			}

			mu.Lock()
			validated[i] = ok
			mu.Unlock()
			return nil
		})
	}

	_ = pool.Wait() // probe goroutines never return errors

	return validated
}

func buildResult(candidate string, validated bool) imagesearch.Result {
	domain := candidate
	title := ""
	if parsed, err := url.Parse(candidate); err == nil {
		domain = parsed.Host
		title = path.Base(parsed.Path)
		if title == "." || title == "/" {
			title = ""
		}
	}
	if title == "" {
		title = fmt.Sprintf("Image from %s", domain)
	}
	if !validated {
		title = fmt.Sprintf("%s (unvalidated)", title)
	}

	return imagesearch.Result{
		URL:    candidate,
		Title:  title,
		Source: fmt.Sprintf("https://%s", domain),
		Status: imagesearch.StatusSuccess,
	}
}
