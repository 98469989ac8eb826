package crawl

import "sync"

// Frontier collects the URLs discovered for the next BFS level.
// It is safe for concurrent use by multiple goroutines. Deduplication is the
// caller's job: only URLs that won the visited-set insertion are pushed.
type Frontier struct {
	mu   sync.Mutex
	urls []string
}

// NewFrontier creates a Frontier seeded with urls.
func NewFrontier(urls ...string) *Frontier {
	return &Frontier{urls: append([]string(nil), urls...)}
}

// Push appends a URL to the frontier.
func (f *Frontier) Push(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
}

// Len returns the number of URLs in the frontier.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.urls)
}

// Drain returns the URLs in push order and empties the frontier.
func (f *Frontier) Drain() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	urls := f.urls
	f.urls = nil
	return urls
}
