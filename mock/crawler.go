package mock

import (
	"context"

	"github.com/fwojciec/linkcrawl"
)

var _ linkcrawl.Crawler = (*Crawler)(nil)

// Crawler is a mock implementation of linkcrawl.Crawler.
type Crawler struct {
	CrawlFn func(ctx context.Context, req linkcrawl.Request) (*linkcrawl.Result, error)
	CloseFn func() error
}

func (c *Crawler) Crawl(ctx context.Context, req linkcrawl.Request) (*linkcrawl.Result, error) {
	return c.CrawlFn(ctx, req)
}

func (c *Crawler) Close() error {
	return c.CloseFn()
}
