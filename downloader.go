package linkcrawl

import "context"

// Downloader retrieves pages by URL.
type Downloader interface {
	// Download fetches the page at url.
	// The context controls timeout and cancellation.
	Download(ctx context.Context, url string) (Document, error)
}

// Document is a downloaded page.
type Document interface {
	// ExtractLinks returns the absolute URLs the page links to.
	// Parsing happens lazily, so an error here means the page was
	// downloaded but could not be read.
	ExtractLinks() ([]string, error)
}
