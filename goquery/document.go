// Package goquery implements linkcrawl.Document on top of goquery.
package goquery

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/linkcrawl"
)

var _ linkcrawl.Document = (*Document)(nil)

// Document is a downloaded HTML page. The markup is parsed lazily by
// ExtractLinks so that parsing happens on an extraction worker.
type Document struct {
	body    []byte
	baseURL string
}

// NewDocument returns a Document for body served from baseURL.
// Relative links are resolved against baseURL, or against the page's
// <base href> when it declares one.
func NewDocument(body []byte, baseURL string) *Document {
	return &Document{body: body, baseURL: baseURL}
}

// ExtractLinks returns the absolute http(s) targets of every a[href] in
// document order. Fragments are stripped and duplicates are dropped.
func (d *Document) ExtractLinks() ([]string, error) {
	base, err := url.Parse(d.baseURL)
	if err != nil {
		return nil, linkcrawl.Errorf(linkcrawl.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(d.body))
	if err != nil {
		return nil, linkcrawl.Errorf(linkcrawl.EINVALID, "failed to parse HTML: %v", err)
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(ref)
		}
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == "" {
			return
		}
		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		links = append(links, resolved)
	})

	return links, nil
}

// resolveURL resolves href against base and strips the fragment.
// It returns an empty string if href cannot be parsed or does not resolve
// to an http or https URL.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
