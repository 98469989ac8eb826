package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fwojciec/linkcrawl"
	"github.com/fwojciec/linkcrawl/crawl"
	lcprom "github.com/fwojciec/linkcrawl/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	Crawler linkcrawl.Crawler

	// Metrics is nil unless metrics output was requested.
	Metrics prometheus.Gatherer
}

// CrawlCmd runs a single crawl and prints its result.
type CrawlCmd struct {
	URL   string
	Depth int
	Hosts []string
}

// Run executes the crawl. The crawler is closed before Run returns.
// Per-URL failures are printed, not returned.
func (c *CrawlCmd) Run(deps *Dependencies) (err error) {
	defer func() {
		if cerr := deps.Crawler.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close crawler: %w", cerr))
		}
	}()

	result, crawlErr := deps.Crawler.Crawl(deps.Ctx, linkcrawl.Request{
		URL:   c.URL,
		Depth: c.Depth,
		Hosts: c.Hosts,
	})
	if result != nil {
		printResult(deps.Stdout, result)
	}
	if deps.Metrics != nil {
		if err := lcprom.WriteText(deps.Stdout, deps.Metrics); err != nil {
			return errors.Join(crawlErr, fmt.Errorf("write metrics: %w", err))
		}
	}
	return crawlErr
}

func printResult(w io.Writer, result *linkcrawl.Result) {
	fmt.Fprintf(w, "Downloaded (%d):\n", len(result.Downloaded))
	for _, u := range result.Downloaded {
		fmt.Fprintf(w, "  %s\n", u)
	}
	fmt.Fprintf(w, "Errors (%d):\n", len(result.Errors))
	for _, u := range result.ErrorURLs() {
		fmt.Fprintf(w, "  %s: %v\n", u, unwrapURLError(result.Errors[u]))
	}
}

// unwrapURLError drops the URL prefix already printed on the line.
func unwrapURLError(err error) error {
	var uerr *linkcrawl.URLError
	if errors.As(err, &uerr) && uerr.Err != nil {
		return fmt.Errorf("%s: %w", uerr.Kind, uerr.Err)
	}
	return err
}

// newProgressPrinter returns a crawl.ProgressFunc that prints running
// totals at most once per interval. Level completions are always printed.
func newProgressPrinter(w io.Writer, interval time.Duration) crawl.ProgressFunc {
	var mu sync.Mutex
	sometimes := &rate.Sometimes{Interval: interval}
	return func(e crawl.ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		if e.Type == crawl.ProgressLevelFinished {
			fmt.Fprintf(w, "depth %d done: %d downloaded, %d failed\n", e.Depth, e.Downloaded, e.Failed)
			return
		}
		sometimes.Do(func() {
			fmt.Fprintf(w, "depth %d: %d downloaded, %d failed\n", e.Depth, e.Downloaded, e.Failed)
		})
	}
}
