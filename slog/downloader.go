// Package slog provides logging decorators for linkcrawl services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/linkcrawl"
)

// Ensure LoggingDownloader implements linkcrawl.Downloader.
var _ linkcrawl.Downloader = (*LoggingDownloader)(nil)

// LoggingDownloader wraps a Downloader with per-request logging.
type LoggingDownloader struct {
	next   linkcrawl.Downloader
	logger *slog.Logger
}

// NewLoggingDownloader creates a new LoggingDownloader.
func NewLoggingDownloader(next linkcrawl.Downloader, logger *slog.Logger) *LoggingDownloader {
	return &LoggingDownloader{next: next, logger: logger}
}

// Download delegates to the wrapped downloader and logs the operation.
func (d *LoggingDownloader) Download(ctx context.Context, url string) (doc linkcrawl.Document, err error) {
	defer func(begin time.Time) {
		d.logger.InfoContext(ctx, "download",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Download(ctx, url)
}
