package linkcrawl

import "context"

// PageStore keeps the raw bodies of downloaded pages.
type PageStore interface {
	// SavePage stores body as the content served for url.
	SavePage(ctx context.Context, url string, body []byte) error
}
