// Package fetch issues outbound HTTP requests with browser-like headers.
//
// It backs both the HTTP image-search fallback and the transfer of image
// bytes selected for upload. Google and most image hosts reject requests
// without a plausible User-Agent, so every request carries a desktop
// Chrome header set.
package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	appLog "github.com/Laisky/image-mcp/library/log"
)

const (
	defaultPageTimeout  = 30 * time.Second
	defaultProbeTimeout = 10 * time.Second

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// maxBodyBytes caps any single response body read.
	maxBodyBytes = 64 << 20
)

// Client wraps an http.Client with browser-like request headers.
type Client struct {
	httpCli  *http.Client
	probeCli *http.Client
	logger   logSDK.Logger
}

// Option customises a Client during construction.
type Option func(*Client)

// WithLogger overrides the default named logger.
func WithLogger(logger logSDK.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying full-body HTTP client, primarily for tests.
func WithHTTPClient(cli *http.Client) Option {
	return func(c *Client) {
		if cli != nil {
			c.httpCli = cli
		}
	}
}

// WithProbeClient replaces the short-timeout client used for HEAD probes.
func WithProbeClient(cli *http.Client) Option {
	return func(c *Client) {
		if cli != nil {
			c.probeCli = cli
		}
	}
}

// NewClient constructs a Client with sane default timeouts.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpCli:  &http.Client{Timeout: defaultPageTimeout},
		probeCli: &http.Client{Timeout: defaultProbeTimeout},
		logger:   appLog.Logger.Named("fetch"),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// FetchPage retrieves the body of url as text. Non-2xx statuses are errors.
func (c *Client) FetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrapf(err, "create request to `%s`", url)
	}
	setBrowserHeaders(req)

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "fetch `%s`", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Errorf("fetch `%s`: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", errors.Wrapf(err, "read body of `%s`", url)
	}

	c.logger.Debug("fetched page",
		zap.String("url", url),
		zap.Int("body_len", len(body)))
	return string(body), nil
}

// Probe issues a short-timeout HEAD request and returns the Content-Type.
// Used to confirm that a candidate URL actually serves an image before it
// is reported as a validated hit.
func (c *Client) Probe(ctx context.Context, url string) (contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", errors.Wrapf(err, "create probe request to `%s`", url)
	}
	setBrowserHeaders(req)

	resp, err := c.probeCli.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "probe `%s`", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("probe `%s`: unexpected status %d", url, resp.StatusCode)
	}

	return resp.Header.Get("Content-Type"), nil
}

// Download retrieves the full body of url together with its Content-Type.
func (c *Client) Download(ctx context.Context, url string) (body []byte, contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", errors.Wrapf(err, "create download request to `%s`", url)
	}
	setBrowserHeaders(req)

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, "", errors.Wrapf(err, "download `%s`", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", errors.Errorf("download `%s`: unexpected status %d", url, resp.StatusCode)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", errors.Wrapf(err, "read body of `%s`", url)
	}

	return body, resp.Header.Get("Content-Type"), nil
}
