package mock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/linkcrawl"
	"github.com/fwojciec/linkcrawl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloader_Download(t *testing.T) {
	t.Parallel()

	t.Run("delegates to DownloadFn", func(t *testing.T) {
		t.Parallel()

		doc := &mock.Document{}
		var calledWith string
		d := &mock.Downloader{
			DownloadFn: func(_ context.Context, url string) (linkcrawl.Document, error) {
				calledWith = url
				return doc, nil
			},
		}

		got, err := d.Download(context.Background(), "http://a.test/")

		require.NoError(t, err)
		assert.Same(t, doc, got)
		assert.Equal(t, "http://a.test/", calledWith)
	})
}

func TestDocument_ExtractLinks(t *testing.T) {
	t.Parallel()

	t.Run("returns error from ExtractLinksFn", func(t *testing.T) {
		t.Parallel()

		d := &mock.Document{
			ExtractLinksFn: func() ([]string, error) {
				return nil, errors.New("truncated body")
			},
		}

		_, err := d.ExtractLinks()

		require.EqualError(t, err, "truncated body")
	})
}

func TestPageStore_SavePage(t *testing.T) {
	t.Parallel()

	t.Run("delegates to SavePageFn", func(t *testing.T) {
		t.Parallel()

		var gotURL, gotBody string
		s := &mock.PageStore{
			SavePageFn: func(_ context.Context, url string, body []byte) error {
				gotURL, gotBody = url, string(body)
				return nil
			},
		}

		err := s.SavePage(context.Background(), "http://a.test/", []byte("<html></html>"))

		require.NoError(t, err)
		assert.Equal(t, "http://a.test/", gotURL)
		assert.Equal(t, "<html></html>", gotBody)
	})
}
