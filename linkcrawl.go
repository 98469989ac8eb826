// Package linkcrawl provides a concurrent breadth-first link crawler.
// It downloads pages up to a configured depth, caps the number of
// simultaneous downloads per host, and reports which URLs were downloaded
// and which failed.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, http/, prometheus/).
// The crawling engine itself lives in crawl/.
package linkcrawl
