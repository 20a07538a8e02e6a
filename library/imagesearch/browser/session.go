package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// session is the headless browser surface the extraction loop drives.
// Splitting it from the loop keeps the loop testable without a Chrome
// binary.
type session interface {
	Navigate(ctx context.Context, url string, settle time.Duration) error
	AcceptConsent(ctx context.Context, selector string, wait time.Duration)
	Thumbnails(ctx context.Context, selectors []string) (selector string, count int, err error)
	ClickThumbnail(ctx context.Context, selector string, index int, settle time.Duration) error
	ThumbnailAlt(index int) string
	FullImageSrc(ctx context.Context, selectors []string) (string, error)
	SourceLink(ctx context.Context, selector string) (string, error)
	PageHeight(ctx context.Context) (int64, error)
	ScrollToBottom(ctx context.Context, settle time.Duration) error
	ClickShowMore(ctx context.Context, selector string, settle time.Duration) error
	Close()
}

// chromedpSession owns one headless Chrome process. The allocator and
// browser contexts derive from the caller's context, so a caller-side
// timeout also tears the process down.
type chromedpSession struct {
	ctx    context.Context
	cancel context.CancelFunc

	// thumbNodes caches the node set of the last Thumbnails call so alt
	// attributes can be read without re-querying the DOM.
	thumbNodes []*cdp.Node
}

func newChromedpSession(ctx context.Context, cfg Config) (session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	sess := &chromedpSession{
		ctx:    browserCtx,
		cancel: func() { cancelBrowser(); cancelAlloc() },
	}

	// Starting the browser lazily on first Run hides launch failures until
	// mid-extraction; force the launch now so a missing binary is a clean
	// session-start failure.
	if err := chromedp.Run(browserCtx); err != nil {
		sess.cancel()
		return nil, errors.Wrap(err, "launch headless chrome")
	}

	return sess, nil
}

func (s *chromedpSession) Navigate(ctx context.Context, url string, settle time.Duration) error {
	if err := chromedp.Run(s.ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settle),
	); err != nil {
		return errors.Wrapf(err, "navigate to `%s`", url)
	}
	return nil
}

func (s *chromedpSession) AcceptConsent(ctx context.Context, selector string, wait time.Duration) {
	if selector == "" {
		return
	}

	clickCtx, cancel := context.WithTimeout(s.ctx, wait)
	defer cancel()

	// Absence of the consent dialog is the common case and not an error.
	_ = chromedp.Run(clickCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
		chromedp.Sleep(time.Second),
	)
}

func (s *chromedpSession) Thumbnails(ctx context.Context, selectors []string) (string, int, error) {
	for _, selector := range selectors {
		var nodes []*cdp.Node
		err := chromedp.Run(s.ctx,
			chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
		)
		if err != nil {
			return "", 0, errors.Wrapf(err, "query thumbnails via `%s`", selector)
		}
		if len(nodes) > 0 {
			s.thumbNodes = nodes
			return selector, len(nodes), nil
		}
	}

	return "", 0, nil
}

func (s *chromedpSession) ClickThumbnail(ctx context.Context, selector string, index int, settle time.Duration) error {
	// JS click: thumbnails are frequently overlapped by other elements,
	// which makes chromedp's native click flaky.
	js := fmt.Sprintf(
		`(function(){var els=document.querySelectorAll(%q);if(els.length>%d){els[%d].click();return true}return false})()`,
		selector, index, index,
	)

	var clicked bool
	if err := chromedp.Run(s.ctx,
		chromedp.Evaluate(js, &clicked),
		chromedp.Sleep(settle),
	); err != nil {
		return errors.Wrapf(err, "click thumbnail %d", index)
	}
	if !clicked {
		return errors.Errorf("thumbnail %d not present", index)
	}
	return nil
}

func (s *chromedpSession) ThumbnailAlt(index int) string {
	if index < 0 || index >= len(s.thumbNodes) {
		return ""
	}
	return s.thumbNodes[index].AttributeValue("alt")
}

func (s *chromedpSession) FullImageSrc(ctx context.Context, selectors []string) (string, error) {
	for _, selector := range selectors {
		js := fmt.Sprintf(
			`(function(){var el=document.querySelector(%q);return el&&el.src?el.src:""})()`,
			selector,
		)

		var src string
		if err := chromedp.Run(s.ctx, chromedp.Evaluate(js, &src)); err != nil {
			return "", errors.Wrapf(err, "query full image via `%s`", selector)
		}
		if strings.TrimSpace(src) != "" {
			return src, nil
		}
	}

	return "", nil
}

func (s *chromedpSession) SourceLink(ctx context.Context, selector string) (string, error) {
	js := fmt.Sprintf(
		`(function(){var el=document.querySelector(%q);return el&&el.href?el.href:""})()`,
		selector,
	)

	var href string
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(js, &href)); err != nil {
		return "", errors.Wrap(err, "query source link")
	}
	return href, nil
}

func (s *chromedpSession) PageHeight(ctx context.Context) (int64, error) {
	var height int64
	if err := chromedp.Run(s.ctx,
		chromedp.Evaluate(`document.body.scrollHeight`, &height),
	); err != nil {
		return 0, errors.Wrap(err, "read page height")
	}
	return height, nil
}

func (s *chromedpSession) ScrollToBottom(ctx context.Context, settle time.Duration) error {
	if err := chromedp.Run(s.ctx,
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(settle),
	); err != nil {
		return errors.Wrap(err, "scroll to bottom")
	}
	return nil
}

func (s *chromedpSession) ClickShowMore(ctx context.Context, selector string, settle time.Duration) error {
	js := fmt.Sprintf(
		`(function(){var el=document.querySelector(%q);if(el){el.click();return true}return false})()`,
		selector,
	)

	var clicked bool
	if err := chromedp.Run(s.ctx,
		chromedp.Evaluate(js, &clicked),
		chromedp.Sleep(settle),
	); err != nil {
		return errors.Wrap(err, "click show more")
	}
	if !clicked {
		return errors.New("show more control not present")
	}
	return nil
}

func (s *chromedpSession) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}
