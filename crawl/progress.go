package crawl

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type  ProgressType
	URL   string
	Depth int
	Error error

	// Downloaded and Failed are running totals for the crawl.
	Downloaded int
	Failed     int
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressDownloaded ProgressType = iota
	ProgressFailed
	ProgressLevelFinished
)

// ProgressFunc is a callback for reporting crawl progress.
// It is called from worker goroutines and must be safe for concurrent use.
type ProgressFunc func(event ProgressEvent)
