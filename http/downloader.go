// Package http provides an HTTP-based implementation of linkcrawl.Downloader.
// Pages are fetched with a plain GET and handed to goquery for link
// extraction; JavaScript is not executed.
package http

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/linkcrawl"
	"github.com/fwojciec/linkcrawl/goquery"
)

// DefaultTimeout is the default timeout for HTTP requests.
const DefaultTimeout = 10 * time.Second

// DefaultMaxBodySize is the default limit on response body size.
const DefaultMaxBodySize = 10 << 20

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "linkcrawl/1.0"

// Ensure Downloader implements linkcrawl.Downloader at compile time.
var _ linkcrawl.Downloader = (*Downloader)(nil)

// Downloader retrieves pages over HTTP.
type Downloader struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	store       linkcrawl.PageStore
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultTimeout (10s) if not specified.
// It has no effect when a client is supplied with WithClient.
func WithTimeout(d time.Duration) Option {
	return func(dl *Downloader) {
		dl.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(dl *Downloader) {
		dl.userAgent = ua
	}
}

// WithMaxBodySize limits how many bytes of a response body are read.
// Larger responses fail the download.
func WithMaxBodySize(n int64) Option {
	return func(dl *Downloader) {
		dl.maxBodySize = n
	}
}

// WithClient sets the HTTP client used for requests.
func WithClient(c *http.Client) Option {
	return func(dl *Downloader) {
		dl.client = c
	}
}

// WithPageStore saves the body of every downloaded HTML page to store.
// A failed save fails the download.
func WithPageStore(store linkcrawl.PageStore) Option {
	return func(dl *Downloader) {
		dl.store = store
	}
}

// NewDownloader creates a new HTTP-based Downloader.
func NewDownloader(opts ...Option) *Downloader {
	d := &Downloader{
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.client == nil {
		d.client = &http.Client{
			Timeout: d.timeout,
		}
	}

	return d
}

// Download fetches url. Non-HTML responses yield a document without links.
func (d *Downloader) Download(ctx context.Context, url string) (linkcrawl.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	// Links resolve against the final URL after redirects.
	base := resp.Request.URL.String()
	if !isHTML(resp.Header.Get("Content-Type")) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, d.maxBodySize))
		return goquery.NewDocument(nil, base), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > d.maxBodySize {
		return nil, fmt.Errorf("response body for %s exceeds %d bytes", url, d.maxBodySize)
	}

	if d.store != nil {
		if err := d.store.SavePage(ctx, url, body); err != nil {
			return nil, fmt.Errorf("save %s: %w", url, err)
		}
	}

	return goquery.NewDocument(body, base), nil
}

// isHTML reports whether a Content-Type header denotes an HTML page.
// A missing header is treated as HTML.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "html")
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
