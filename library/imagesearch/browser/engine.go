// Package browser implements the browser-driven image search strategy: a
// headless Chrome session navigates Google Images, clicks thumbnails and
// reads full-resolution URLs out of the preview panel.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/image-mcp/library/imagesearch"
	appLog "github.com/Laisky/image-mcp/library/log"
)

const engineName = "google_images_browser"

// chromeCandidates are binary names probed when no explicit path is
// configured.
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// sessionFactory builds a browser session; replaced in tests.
type sessionFactory func(ctx context.Context, cfg Config) (session, error)

// Engine is the browser-driven search strategy.
type Engine struct {
	cfg        Config
	logger     logSDK.Logger
	newSession sessionFactory
	lookPath   func(string) (string, error)
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

// withSessionFactory injects a fake session for tests.
func withSessionFactory(factory sessionFactory) Option {
	return func(e *Engine) {
		if factory != nil {
			e.newSession = factory
		}
	}
}

// NewEngine constructs the browser engine with the given configuration.
func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:        cfg,
		logger:     appLog.Logger.Named("imagesearch_browser"),
		newSession: newChromedpSession,
		lookPath:   exec.LookPath,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Name implements imagesearch.Engine.
func (e *Engine) Name() string { return engineName }

// Available implements imagesearch.Engine: it reports whether a Chrome
// binary can be found on the host.
func (e *Engine) Available() bool {
	if e.cfg.ChromePath != "" {
		if _, err := e.lookPath(e.cfg.ChromePath); err == nil {
			return true
		}
		e.logger.Warn("configured chrome path not found",
			zap.String("path", e.cfg.ChromePath))
		return false
	}

	for _, name := range chromeCandidates {
		if _, err := e.lookPath(name); err == nil {
			return true
		}
	}
	return false
}

// SearchImages implements imagesearch.Engine.
//
// Collecting fewer than maxResults because the page ran out of content is
// a legitimate success path; only a session-start failure is an error.
func (e *Engine) SearchImages(ctx context.Context, query string, maxResults int) ([]imagesearch.Result, error) {
	sess, err := e.newSession(ctx, e.cfg)
	if err != nil {
		e.logger.Warn("browser session start failed", zap.Error(err))
		return nil, err
	}
	defer sess.Close()

	searchURL := fmt.Sprintf("https://www.google.com/search?q=%s&tbm=isch&hl=en",
		url.QueryEscape(query))
	if err := sess.Navigate(ctx, searchURL, e.cfg.PageSettle); err != nil {
		return nil, err
	}

	sess.AcceptConsent(ctx, e.cfg.ConsentSelector, e.cfg.ConsentWait)

	results := e.extractLoop(ctx, sess, maxResults)

	e.logger.Info("browser search completed",
		zap.Int("query_len", len(query)),
		zap.Int("results", len(results)))
	return results, nil
}

// extractLoop clicks visible thumbnails and records full-resolution URLs
// until maxResults hits are collected or the page stops yielding new
// content. Per-item failures skip the item; loop-level failures terminate
// with whatever was collected so far.
func (e *Engine) extractLoop(ctx context.Context, sess session, maxResults int) []imagesearch.Result {
	var results []imagesearch.Result
	var processed int
	var lastHeight int64
	var showMoreUsed bool

	for len(results) < maxResults {
		selector, count, err := sess.Thumbnails(ctx, e.cfg.ThumbnailSelectors)
		if err != nil {
			e.logger.Warn("thumbnail query failed, returning partial results", zap.Error(err))
			break
		}
		if count == 0 {
			e.logger.Debug("no thumbnails matched any selector")
			break
		}
		if count > processed {
			showMoreUsed = false
		}

		for i := processed; i < count && len(results) < maxResults; i++ {
			if err := sess.ClickThumbnail(ctx, selector, i, e.cfg.ClickSettle); err != nil {
				e.logger.Debug("thumbnail click failed", zap.Int("index", i), zap.Error(err))
				continue
			}

			src, err := sess.FullImageSrc(ctx, e.cfg.FullImageSelectors)
			if err != nil {
				e.logger.Debug("full image lookup failed", zap.Int("index", i), zap.Error(err))
				continue
			}
			if !acceptableImageURL(src) {
				continue
			}

			title := strings.TrimSpace(sess.ThumbnailAlt(i))
			if title == "" {
				title = fmt.Sprintf("Image %d", len(results)+1)
			}

			source := "Unknown"
			if href, err := sess.SourceLink(ctx, e.cfg.SourceLinkSelector); err == nil && href != "" {
				source = href
			}

			results = append(results, imagesearch.Result{
				URL:    src,
				Title:  title,
				Source: source,
				Status: imagesearch.StatusSuccess,
			})
		}
		processed = count

		if len(results) >= maxResults {
			break
		}

		// Pagination: scroll while the page keeps growing, then fall back
		// to the "Show more results" control, then give up with a partial
		// result list.
		height, err := sess.PageHeight(ctx)
		if err != nil {
			break
		}
		if height > lastHeight {
			if err := sess.ScrollToBottom(ctx, e.cfg.ScrollSettle); err != nil {
				break
			}
			lastHeight = height
			continue
		}
		if showMoreUsed {
			// show more already tried and nothing new appeared
			break
		}
		if err := sess.ClickShowMore(ctx, e.cfg.ShowMoreSelector, e.cfg.PageSettle); err != nil {
			break
		}
		showMoreUsed = true
	}

	return results
}

// acceptableImageURL accepts absolute HTTP URLs that do not point at known
// thumbnail CDNs.
func acceptableImageURL(src string) bool {
	if !strings.HasPrefix(src, "http") {
		return false
	}
	return !strings.Contains(src, "gstatic") && !strings.Contains(src, "encrypted")
}
