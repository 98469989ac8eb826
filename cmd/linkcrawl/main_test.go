package main_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	main "github.com/fwojciec/linkcrawl/cmd/linkcrawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSite serves three pages: the root links to /a and /missing,
// /a links back to the root and to an external host.
func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<a href="/a">A</a><a href="/missing">Missing</a>`))
	})
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<a href="/">Home</a><a href="http://external.invalid/">Out</a>`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"--help"}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "linkcrawl")
	assert.Contains(t, stdout.String(), "url")
	assert.Contains(t, stdout.String(), "--host")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{}, &stdout, &stderr)

	require.Error(t, err)
	assert.Contains(t, stdout.String(), "linkcrawl")
}

func TestMain_Run_RejectsNonIntegerArguments(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"https://example.com/", "two"}, &stdout, &stderr)

	assert.Error(t, err)
}

func TestMain_Run_RejectsTooManyArguments(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"https://example.com/", "1", "2", "2", "2", "9"}, &stdout, &stderr)

	assert.Error(t, err)
}

func TestMain_Run_RejectsNonPositiveWorkerCounts(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"https://example.com/", "1", "0"}, &stdout, &stderr)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "download workers must be positive")
}

func TestMain_Run_Crawl(t *testing.T) {
	t.Parallel()

	t.Run("downloads only the start page by default", func(t *testing.T) {
		t.Parallel()

		server := newTestSite(t)
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{server.URL + "/"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Downloaded (1):\n  "+server.URL+"/\n")
		assert.Contains(t, stdout.String(), "Errors (0):")
	})

	t.Run("prints downloaded pages and errors", func(t *testing.T) {
		t.Parallel()

		server := newTestSite(t)
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{server.URL + "/", "2", "4", "2", "1"}, &stdout, &stderr)

		require.NoError(t, err)
		want := fmt.Sprintf("Downloaded (2):\n  %[1]s/\n  %[1]s/a\nErrors (1):\n  %[1]s/missing: download: HTTP 404 for %[1]s/missing\n", server.URL)
		assert.Equal(t, want, stdout.String())
	})

	t.Run("follows only allowed hosts", func(t *testing.T) {
		t.Parallel()

		server := newTestSite(t)
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{server.URL + "/", "3", "--host", "127.0.0.1"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.NotContains(t, stdout.String(), "external.invalid")
	})

	t.Run("prints no metrics by default", func(t *testing.T) {
		t.Parallel()

		server := newTestSite(t)
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{server.URL + "/", "2"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Downloaded (2):")
		assert.NotContains(t, stdout.String(), "linkcrawl_downloads_total")
	})

	t.Run("accepts a comma-separated host list", func(t *testing.T) {
		t.Parallel()

		server := newTestSite(t)
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{server.URL + "/", "2", "--host", "example.com,127.0.0.1"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Downloaded (2):")
	})

	t.Run("prints metrics when requested", func(t *testing.T) {
		t.Parallel()

		server := newTestSite(t)
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{server.URL + "/", "--metrics"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), `linkcrawl_downloads_total{host="127.0.0.1",outcome="success"} 1`)
	})

	t.Run("reports progress on stderr", func(t *testing.T) {
		t.Parallel()

		server := newTestSite(t)
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{server.URL + "/", "2", "--progress"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "depth 1 done: 1 downloaded, 0 failed")
		assert.Contains(t, stderr.String(), "depth 2 done: 2 downloaded, 1 failed")
	})

	t.Run("logs downloads when verbose", func(t *testing.T) {
		t.Parallel()

		server := newTestSite(t)
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{server.URL + "/", "--verbose"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "msg=download")
		assert.Contains(t, stderr.String(), "crawl_id=")
	})

	t.Run("saves pages when a save directory is given", func(t *testing.T) {
		t.Parallel()

		server := newTestSite(t)
		dir := t.TempDir()
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{server.URL + "/", "2", "--save-dir", dir}, &stdout, &stderr)

		require.NoError(t, err)
		host := strings.ReplaceAll(strings.TrimPrefix(server.URL, "http://"), ":", "_")
		assert.FileExists(t, filepath.Join(dir, host, "index.html"))
		assert.FileExists(t, filepath.Join(dir, host, "a.html"))
	})

	t.Run("returns an error for a zero depth", func(t *testing.T) {
		t.Parallel()

		server := newTestSite(t)
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{server.URL + "/", "0"}, &stdout, &stderr)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "depth must be positive")
	})
}

func TestMain_Run_ReadsHostsFromEnvironment(t *testing.T) {
	server := newTestSite(t)
	t.Setenv("LINKCRAWL_HOSTS", "example.com,other.example")

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{server.URL + "/", "2"}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Equal(t, "Downloaded (0):\nErrors (0):\n", stdout.String())
}
