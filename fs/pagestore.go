// Package fs provides file-based storage for downloaded pages.
package fs

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fwojciec/linkcrawl"
)

// URLToPath converts a page URL to a relative file path rooted at its host.
// Example: https://example.com/docs/api/users → example.com/docs/api/users.html
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", linkcrawl.Errorf(linkcrawl.EINVALID, "malformed URL %q: %v", rawURL, err)
	}
	host, err := linkcrawl.Host(rawURL)
	if err != nil {
		return "", err
	}
	if port := u.Port(); port != "" {
		host += "_" + port
	}

	p := u.Path
	trailing := p == "" || strings.HasSuffix(p, "/")

	// Clean keeps the result inside the host directory.
	p = strings.TrimPrefix(path.Clean("/"+p), "/")

	// Root or trailing slash → index.html
	if p == "" {
		return filepath.Join(host, "index.html"), nil
	}
	if trailing {
		return filepath.Join(host, filepath.FromSlash(p), "index.html"), nil
	}
	if path.Ext(p) == "" {
		p += ".html"
	}
	return filepath.Join(host, filepath.FromSlash(p)), nil
}

// Ensure PageStore implements linkcrawl.PageStore at compile time.
var _ linkcrawl.PageStore = (*PageStore)(nil)

// PageStore writes page bodies to a directory tree mirroring the URLs.
type PageStore struct {
	baseDir string
}

// NewPageStore creates a new PageStore that writes below baseDir.
func NewPageStore(baseDir string) *PageStore {
	return &PageStore{baseDir: baseDir}
}

// SavePage writes body to the file for url, replacing any previous copy.
// The file is written to a temporary name first and renamed into place so
// readers never see a partial page.
func (s *PageStore) SavePage(ctx context.Context, url string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	relPath, err := URLToPath(url)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(s.baseDir, relPath)

	// Create parent directories
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".page-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), fullPath)
}
