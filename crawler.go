package linkcrawl

import (
	"context"
	"sort"
)

// Request describes a single crawl.
type Request struct {
	// URL is the start page.
	URL string

	// Depth is the number of BFS levels to download. Depth 1 downloads
	// only the start page.
	Depth int

	// Hosts restricts the crawl to the given hosts. Nil means no restriction.
	Hosts []string
}

// Validate returns an error if the request contains invalid fields.
func (r *Request) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "crawl start URL required")
	}
	if r.Depth < 1 {
		return Errorf(EINVALID, "crawl depth must be positive, got %d", r.Depth)
	}
	return nil
}

// Result holds the outcome of a crawl.
// A URL appears in at most one of Downloaded or Errors.
type Result struct {
	// Downloaded lists the successfully downloaded URLs in sorted order.
	Downloaded []string

	// Errors maps each failed URL to a *URLError describing the failure.
	Errors map[string]error
}

// NewResult builds a Result from unordered downloads and an error map.
func NewResult(downloaded []string, errs map[string]error) *Result {
	sort.Strings(downloaded)
	if errs == nil {
		errs = make(map[string]error)
	}
	return &Result{Downloaded: downloaded, Errors: errs}
}

// Len returns the total number of URLs accounted for.
func (r *Result) Len() int {
	return len(r.Downloaded) + len(r.Errors)
}

// ErrorURLs returns the failed URLs in sorted order.
func (r *Result) ErrorURLs() []string {
	urls := make([]string, 0, len(r.Errors))
	for u := range r.Errors {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// Crawler downloads pages reachable from a start URL.
type Crawler interface {
	// Crawl runs a breadth-first crawl described by req.
	// Per-URL failures are reported in the Result, not as the returned error.
	// If ctx is canceled the partial Result is returned together with an error
	// wrapping ctx.Err().
	Crawl(ctx context.Context, req Request) (*Result, error)

	// Close stops the crawler. Crawl returns ECLOSED afterwards.
	// It is safe to call Close more than once.
	Close() error
}
