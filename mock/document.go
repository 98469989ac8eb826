package mock

import "github.com/fwojciec/linkcrawl"

var _ linkcrawl.Document = (*Document)(nil)

// Document is a mock implementation of linkcrawl.Document.
type Document struct {
	ExtractLinksFn func() ([]string, error)
}

func (d *Document) ExtractLinks() ([]string, error) {
	return d.ExtractLinksFn()
}
