package mock

import (
	"context"

	"github.com/fwojciec/linkcrawl"
)

var _ linkcrawl.PageStore = (*PageStore)(nil)

// PageStore is a mock implementation of linkcrawl.PageStore.
type PageStore struct {
	SavePageFn func(ctx context.Context, url string, body []byte) error
}

func (s *PageStore) SavePage(ctx context.Context, url string, body []byte) error {
	return s.SavePageFn(ctx, url, body)
}
