package linkcrawl

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Host returns the normalized host of rawURL, without port.
// It fails with an EINVALID error if the URL cannot be parsed or has no host.
func Host(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", Errorf(EINVALID, "malformed URL %q: %v", rawURL, err)
	}
	if u.Hostname() == "" {
		return "", Errorf(EINVALID, "URL %q has no host", rawURL)
	}
	return NormalizeHost(u.Hostname()), nil
}

// NormalizeHost lowercases a host name and converts it to its ASCII form so
// that "Bücher.example" and "xn--bcher-kva.example" share admission state.
// Hosts that are not valid IDNA labels are only lowercased.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return host
}
