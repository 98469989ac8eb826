package mock

import (
	"context"

	"github.com/fwojciec/linkcrawl"
)

var _ linkcrawl.Downloader = (*Downloader)(nil)

// Downloader is a mock implementation of linkcrawl.Downloader.
type Downloader struct {
	DownloadFn func(ctx context.Context, url string) (linkcrawl.Document, error)
}

func (d *Downloader) Download(ctx context.Context, url string) (linkcrawl.Document, error) {
	return d.DownloadFn(ctx, url)
}
