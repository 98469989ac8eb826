// Package crawl provides the concurrent breadth-first crawling engine.
// It coordinates per-host admission, the download and extraction worker
// pools, and the level barrier that separates BFS levels.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/linkcrawl"
)

// Engine defaults.
const (
	DefaultDownloaders     = 2
	DefaultExtractors      = 2
	DefaultPerHost         = 2
	DefaultShutdownTimeout = 10 * time.Second
)

// Compile-time interface verification.
var _ linkcrawl.Crawler = (*Crawler)(nil)

// Crawler is a breadth-first link crawler with bounded per-host concurrency.
// A Crawler may run several crawls concurrently; they share the worker pools
// and the per-host admission queues.
type Crawler struct {
	downloader      linkcrawl.Downloader
	downloaders     int
	extractors      int
	perHost         int
	shutdownTimeout time.Duration
	logger          *slog.Logger
	progress        ProgressFunc

	downloadPool *Pool
	extractPool  *Pool
	hosts        *shardedMap[*HostQueue]

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithDownloaders sets the number of download workers.
func WithDownloaders(n int) Option {
	return func(c *Crawler) {
		c.downloaders = n
	}
}

// WithExtractors sets the number of link extraction workers.
func WithExtractors(n int) Option {
	return func(c *Crawler) {
		c.extractors = n
	}
}

// WithPerHost sets the maximum number of simultaneous downloads per host.
func WithPerHost(n int) Option {
	return func(c *Crawler) {
		c.perHost = n
	}
}

// WithShutdownTimeout sets how long Close waits for queued work to drain
// before cancelling it.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *Crawler) {
		c.shutdownTimeout = d
	}
}

// WithLogger sets the logger for engine debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// WithProgress sets a callback receiving progress events.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Crawler) {
		c.progress = fn
	}
}

// New creates a Crawler and starts its worker pools.
// It returns EINVALID if a worker count or the per-host limit is not positive.
func New(downloader linkcrawl.Downloader, opts ...Option) (*Crawler, error) {
	c := &Crawler{
		downloader:      downloader,
		downloaders:     DefaultDownloaders,
		extractors:      DefaultExtractors,
		perHost:         DefaultPerHost,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.downloader == nil {
		return nil, linkcrawl.Errorf(linkcrawl.EINVALID, "downloader required")
	}
	if c.downloaders <= 0 {
		return nil, linkcrawl.Errorf(linkcrawl.EINVALID, "download workers must be positive, got %d", c.downloaders)
	}
	if c.extractors <= 0 {
		return nil, linkcrawl.Errorf(linkcrawl.EINVALID, "extraction workers must be positive, got %d", c.extractors)
	}
	if c.perHost <= 0 {
		return nil, linkcrawl.Errorf(linkcrawl.EINVALID, "per-host limit must be positive, got %d", c.perHost)
	}
	if c.shutdownTimeout <= 0 {
		return nil, linkcrawl.Errorf(linkcrawl.EINVALID, "shutdown timeout must be positive, got %s", c.shutdownTimeout)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}

	c.downloadPool = NewPool("download", c.downloaders)
	c.extractPool = NewPool("extract", c.extractors)
	c.hosts = newShardedMap[*HostQueue]()
	return c, nil
}

// Crawl downloads every page reachable from req.URL within req.Depth levels.
func (c *Crawler) Crawl(ctx context.Context, req linkcrawl.Request) (*linkcrawl.Result, error) {
	if c.closed.Load() {
		return nil, linkcrawl.Errorf(linkcrawl.ECLOSED, "crawler is closed")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	state := newCrawlState(req.Hosts)
	state.visited.Add(req.URL)
	current := []string{req.URL}

	for depth := 1; depth <= req.Depth && len(current) > 0; depth++ {
		if depth > 1 && c.closed.Load() {
			return state.result(), linkcrawl.Errorf(linkcrawl.ECLOSED, "crawler closed before depth %d", depth)
		}

		lvl := &level{
			ctx:       ctx,
			state:     state,
			barrier:   NewBarrier(len(current)),
			next:      NewFrontier(),
			depth:     depth,
			remaining: req.Depth - depth,
		}
		c.logger.Debug("level started", "depth", depth, "urls", len(current))

		for _, u := range current {
			c.dispatch(lvl, u)
		}
		if err := lvl.barrier.Wait(ctx); err != nil {
			return state.result(), fmt.Errorf("crawl interrupted at depth %d: %w", depth, err)
		}
		if lvl.barrier.Cancelled() > 0 && c.closed.Load() {
			return state.result(), linkcrawl.Errorf(linkcrawl.ECLOSED, "crawler closed during depth %d, %d jobs dropped", depth, lvl.barrier.Cancelled())
		}

		downloaded, failed := state.counts()
		c.logger.Debug("level finished",
			"depth", depth,
			"discovered", lvl.next.Len(),
			"cancelled", lvl.barrier.Cancelled(),
		)
		c.emit(ProgressEvent{
			Type:       ProgressLevelFinished,
			Depth:      depth,
			Downloaded: downloaded,
			Failed:     failed,
		})

		current = lvl.next.Drain()
	}

	return state.result(), nil
}

// Close stops accepting crawls, lets queued downloads and then queued
// extractions finish within the shutdown timeout, and cancels whatever is
// left after that. Close is idempotent and safe for concurrent use.
func (c *Crawler) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.shutdown()
	})
	return c.closeErr
}

func (c *Crawler) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.shutdownTimeout)
	defer cancel()

	err := c.downloadPool.Shutdown(ctx)
	if err == nil {
		err = c.extractPool.Shutdown(ctx)
	}
	if err == nil {
		return nil
	}

	c.logger.Warn("shutdown grace period elapsed, cancelling jobs",
		"timeout", c.shutdownTimeout,
		"queued_downloads", c.downloadPool.Len(),
		"queued_extractions", c.extractPool.Len(),
		"err", err,
	)
	stopCtx, stopCancel := context.WithTimeout(context.Background(), c.shutdownTimeout)
	defer stopCancel()

	if err := errors.Join(c.downloadPool.Stop(stopCtx), c.extractPool.Stop(stopCtx)); err != nil {
		return fmt.Errorf("close crawler: %w", err)
	}
	return nil
}

// hostQueue returns the admission queue for host, creating it on first use.
func (c *Crawler) hostQueue(host string) *HostQueue {
	q, loaded := c.hosts.LoadOrCreate(host, func() *HostQueue {
		return NewHostQueue(host, c.perHost, c.downloadPool)
	})
	if !loaded {
		c.logger.Debug("host queue created", "host", q.Host())
	}
	return q
}

// dispatch routes one frontier URL. Malformed and filtered URLs complete
// their barrier unit immediately and never reach a pool.
func (c *Crawler) dispatch(lvl *level, rawURL string) {
	host, err := linkcrawl.Host(rawURL)
	if err != nil {
		c.fail(lvl, linkcrawl.KindMalformedURL, rawURL, err)
		lvl.barrier.Arrive()
		return
	}
	if !lvl.state.allowsHost(host) {
		lvl.barrier.Arrive()
		return
	}
	c.hostQueue(host).Submit(&downloadJob{crawler: c, level: lvl, url: rawURL})
}

func (c *Crawler) succeed(lvl *level, url string) {
	lvl.state.succeed(url)
	if c.progress != nil {
		downloaded, failed := lvl.state.counts()
		c.emit(ProgressEvent{
			Type:       ProgressDownloaded,
			URL:        url,
			Depth:      lvl.depth,
			Downloaded: downloaded,
			Failed:     failed,
		})
	}
}

func (c *Crawler) fail(lvl *level, kind linkcrawl.ErrorKind, url string, err error) {
	lvl.state.fail(kind, url, err)
	if c.progress != nil {
		downloaded, failed := lvl.state.counts()
		c.emit(ProgressEvent{
			Type:       ProgressFailed,
			URL:        url,
			Depth:      lvl.depth,
			Error:      err,
			Downloaded: downloaded,
			Failed:     failed,
		})
	}
}

func (c *Crawler) emit(event ProgressEvent) {
	if c.progress != nil {
		c.progress(event)
	}
}

// level is the per-level context shared by the jobs of one BFS level.
type level struct {
	ctx       context.Context
	state     *crawlState
	barrier   *Barrier
	next      *Frontier
	depth     int
	remaining int
}

// downloadJob fetches one URL. On success with depth to spare it registers
// an extra barrier unit and hands the document to the extraction pool.
type downloadJob struct {
	crawler *Crawler
	level   *level
	url     string
}

func (j *downloadJob) Run(poolCtx context.Context) {
	lvl := j.level
	ctx, cancel := joinContext(lvl.ctx, poolCtx)
	defer cancel()

	if ctx.Err() != nil {
		lvl.barrier.Cancel()
		return
	}

	doc, err := j.crawler.downloader.Download(ctx, j.url)
	if err != nil {
		if ctx.Err() != nil {
			lvl.barrier.Cancel()
			return
		}
		j.crawler.fail(lvl, linkcrawl.KindDownload, j.url, err)
		lvl.barrier.Arrive()
		return
	}

	if lvl.remaining == 0 {
		j.crawler.succeed(lvl, j.url)
		lvl.barrier.Arrive()
		return
	}

	lvl.barrier.Register()
	if err := j.crawler.extractPool.Submit(&extractJob{crawler: j.crawler, level: lvl, url: j.url, doc: doc}); err != nil {
		lvl.barrier.Cancel()
	}
	lvl.barrier.Arrive()
}

func (j *downloadJob) Cancel() {
	j.level.barrier.Cancel()
}

// extractJob extracts the links of a downloaded page and feeds first-seen
// ones into the next level's frontier. The page counts as downloaded once
// its links were read.
type extractJob struct {
	crawler *Crawler
	level   *level
	url     string
	doc     linkcrawl.Document
}

func (j *extractJob) Run(poolCtx context.Context) {
	lvl := j.level
	if lvl.ctx.Err() != nil || poolCtx.Err() != nil {
		lvl.barrier.Cancel()
		return
	}

	links, err := j.doc.ExtractLinks()
	if err != nil {
		j.crawler.fail(lvl, linkcrawl.KindExtraction, j.url, err)
		lvl.barrier.Arrive()
		return
	}
	j.crawler.succeed(lvl, j.url)

	for _, link := range links {
		if lvl.state.visited.Contains(link) || !lvl.state.admitsLink(link) {
			continue
		}
		if lvl.state.visited.Add(link) {
			lvl.next.Push(link)
		}
	}
	lvl.barrier.Arrive()
}

func (j *extractJob) Cancel() {
	j.level.barrier.Cancel()
}
