package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/linkcrawl"
	"github.com/fwojciec/linkcrawl/crawl"
	"github.com/fwojciec/linkcrawl/fs"
	lchttp "github.com/fwojciec/linkcrawl/http"
	lcprom "github.com/fwojciec/linkcrawl/prometheus"
	lcslog "github.com/fwojciec/linkcrawl/slog"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("linkcrawl"),
		kong.Description("Crawl a site breadth-first and list the pages that were downloaded"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle no arguments
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Wire dependencies
	httpOpts := []lchttp.Option{
		lchttp.WithTimeout(cli.Timeout),
		lchttp.WithUserAgent(cli.UserAgent),
		lchttp.WithMaxBodySize(cli.MaxBodySize),
	}
	if cli.SaveDir != "" {
		httpOpts = append(httpOpts, lchttp.WithPageStore(fs.NewPageStore(cli.SaveDir)))
	}
	var downloader linkcrawl.Downloader = lchttp.NewDownloader(httpOpts...)

	var metrics prometheus.Gatherer
	if cli.Metrics {
		registry := prometheus.NewRegistry()
		downloader = lcprom.NewDownloader(downloader, registry)
		metrics = registry
	}
	downloader = lcslog.NewLoggingDownloader(downloader, logger)

	opts := []crawl.Option{
		crawl.WithDownloaders(cli.Downloaders),
		crawl.WithExtractors(cli.Extractors),
		crawl.WithPerHost(cli.PerHost),
		crawl.WithShutdownTimeout(cli.ShutdownTimeout),
		crawl.WithLogger(logger),
	}
	if cli.Progress {
		opts = append(opts, crawl.WithProgress(newProgressPrinter(stderr, time.Second)))
	}

	engine, err := crawl.New(downloader, opts...)
	if err != nil {
		return fmt.Errorf("failed to create crawler: %w", err)
	}

	cmd := &CrawlCmd{
		URL:   cli.URL,
		Depth: cli.Depth,
		Hosts: cli.Hosts,
	}
	deps := &Dependencies{
		Ctx:     ctx,
		Stdout:  stdout,
		Stderr:  stderr,
		Crawler: lcslog.NewLoggingCrawler(engine, logger),
		Metrics: metrics,
	}

	return cmd.Run(deps)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	URL         string `arg:"" required:"" help:"Start URL"`
	Depth       int    `arg:"" optional:"" default:"1" help:"Number of levels to download"`
	Downloaders int    `arg:"" optional:"" default:"2" help:"Number of download workers"`
	Extractors  int    `arg:"" optional:"" default:"2" help:"Number of link extraction workers"`
	PerHost     int    `arg:"" optional:"" default:"2" name:"per-host" help:"Maximum simultaneous downloads per host"`

	Hosts           []string      `name:"host" env:"LINKCRAWL_HOSTS" help:"Only follow links on these hosts (repeatable or comma-separated)"`
	Timeout         time.Duration `short:"t" default:"10s" env:"LINKCRAWL_TIMEOUT" help:"Download timeout per page"`
	UserAgent       string        `default:"linkcrawl/1.0" env:"LINKCRAWL_USER_AGENT" help:"User-Agent header sent with each request"`
	MaxBodySize     int64         `default:"10485760" env:"LINKCRAWL_MAX_BODY_SIZE" help:"Maximum response body size in bytes"`
	SaveDir         string        `type:"path" env:"LINKCRAWL_SAVE_DIR" help:"Save downloaded pages below this directory"`
	ShutdownTimeout time.Duration `default:"10s" env:"LINKCRAWL_SHUTDOWN_TIMEOUT" help:"Grace period for queued work on shutdown"`
	Progress        bool          `short:"p" help:"Report crawl progress on stderr"`
	Metrics         bool          `help:"Print download metrics after the crawl"`
	Verbose         bool          `short:"v" help:"Enable debug logging"`
}
