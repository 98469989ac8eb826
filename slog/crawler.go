package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/linkcrawl"
	"github.com/google/uuid"
)

// Ensure LoggingCrawler implements linkcrawl.Crawler.
var _ linkcrawl.Crawler = (*LoggingCrawler)(nil)

// LoggingCrawler wraps a Crawler and logs the start and outcome of each
// crawl under a fresh crawl id.
type LoggingCrawler struct {
	next   linkcrawl.Crawler
	logger *slog.Logger
}

// NewLoggingCrawler creates a new LoggingCrawler.
func NewLoggingCrawler(next linkcrawl.Crawler, logger *slog.Logger) *LoggingCrawler {
	return &LoggingCrawler{next: next, logger: logger}
}

// Crawl delegates to the wrapped crawler and logs a summary.
func (c *LoggingCrawler) Crawl(ctx context.Context, req linkcrawl.Request) (result *linkcrawl.Result, err error) {
	logger := c.logger.With("crawl_id", uuid.NewString())
	logger.InfoContext(ctx, "crawl started",
		"url", req.URL,
		"depth", req.Depth,
		"hosts", req.Hosts,
	)

	defer func(begin time.Time) {
		var downloaded, failed int
		if result != nil {
			downloaded, failed = len(result.Downloaded), len(result.Errors)
		}
		logger.InfoContext(ctx, "crawl finished",
			"downloaded", downloaded,
			"errors", failed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Crawl(ctx, req)
}

// Close delegates to the wrapped crawler.
func (c *LoggingCrawler) Close() (err error) {
	defer func(begin time.Time) {
		c.logger.Info("crawler closed",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Close()
}
