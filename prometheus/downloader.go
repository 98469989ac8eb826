// Package prometheus instruments linkcrawl services with Prometheus metrics.
package prometheus

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/linkcrawl"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Download outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// Ensure Downloader implements linkcrawl.Downloader.
var _ linkcrawl.Downloader = (*Downloader)(nil)

// Downloader wraps a Downloader and records request counts, latency and
// in-flight downloads per host.
type Downloader struct {
	next linkcrawl.Downloader

	downloads *prometheus.CounterVec
	inflight  *prometheus.GaugeVec
	duration  *prometheus.HistogramVec
}

// NewDownloader registers the download collectors with reg and returns a
// Downloader delegating to next. It panics if the collectors are already
// registered with reg.
func NewDownloader(next linkcrawl.Downloader, reg prometheus.Registerer) *Downloader {
	factory := promauto.With(reg)
	return &Downloader{
		next: next,
		downloads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "linkcrawl_downloads_total",
			Help: "The total number of page downloads by host and outcome.",
		}, []string{"host", "outcome"}),
		inflight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "linkcrawl_downloads_in_flight",
			Help: "The number of downloads currently running per host.",
		}, []string{"host"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "linkcrawl_download_duration_seconds",
			Help:    "Page download latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
	}
}

// Download delegates to the wrapped downloader and records its outcome.
func (d *Downloader) Download(ctx context.Context, url string) (linkcrawl.Document, error) {
	host, err := linkcrawl.Host(url)
	if err != nil {
		host = "unknown"
	}

	gauge := d.inflight.WithLabelValues(host)
	gauge.Inc()
	defer gauge.Dec()

	begin := time.Now()
	doc, err := d.next.Download(ctx, url)
	d.duration.WithLabelValues(host).Observe(time.Since(begin).Seconds())

	outcome := OutcomeSuccess
	switch {
	case err != nil && ctx.Err() != nil:
		outcome = OutcomeCanceled
	case err != nil:
		outcome = OutcomeError
	}
	d.downloads.WithLabelValues(host, outcome).Inc()

	return doc, err
}

// WriteText writes every metric gathered from g in the Prometheus text
// exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
