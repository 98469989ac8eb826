package crawl

import "github.com/fwojciec/linkcrawl"

// crawlState aggregates the outcome of one Crawl call. It is shared by
// every job the call spawns and dropped when the call returns.
type crawlState struct {
	visited *stringSet
	results *stringSet
	errors  *shardedMap[error]

	// allowed is nil when every host is allowed.
	allowed map[string]struct{}
}

func newCrawlState(hosts []string) *crawlState {
	s := &crawlState{
		visited: newStringSet(),
		results: newStringSet(),
		errors:  newShardedMap[error](),
	}
	if hosts != nil {
		s.allowed = make(map[string]struct{}, len(hosts))
		for _, h := range hosts {
			s.allowed[linkcrawl.NormalizeHost(h)] = struct{}{}
		}
	}
	return s
}

// allowsHost reports whether host passes the allow-list.
func (s *crawlState) allowsHost(host string) bool {
	if s.allowed == nil {
		return true
	}
	_, ok := s.allowed[host]
	return ok
}

// admitsLink reports whether a discovered link may enter the frontier.
// Links without a parsable host are admitted so they get reported as
// malformed when dispatched.
func (s *crawlState) admitsLink(rawURL string) bool {
	if s.allowed == nil {
		return true
	}
	host, err := linkcrawl.Host(rawURL)
	if err != nil {
		return true
	}
	return s.allowsHost(host)
}

func (s *crawlState) succeed(url string) {
	s.results.Add(url)
}

func (s *crawlState) fail(kind linkcrawl.ErrorKind, url string, err error) {
	s.errors.Store(url, &linkcrawl.URLError{Kind: kind, URL: url, Err: err})
}

func (s *crawlState) counts() (downloaded, failed int) {
	return s.results.Len(), s.errors.Len()
}

func (s *crawlState) result() *linkcrawl.Result {
	return linkcrawl.NewResult(s.results.Slice(), s.errors.Snapshot())
}
