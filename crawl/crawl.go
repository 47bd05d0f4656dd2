// Package crawl drives the two passes of a harvest: discovery reads the
// listing page into targets, and harvesting fetches every target, extracts
// its fragment and writes it to disk. Targets are processed one at a time.
package crawl

import (
	"log/slog"
	"net/url"
	"strings"
)

// InScope reports whether rawURL belongs to domain or one of its
// subdomains. An empty domain admits every URL.
func InScope(rawURL, domain string) bool {
	if domain == "" {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	domain = strings.ToLower(strings.TrimSuffix(domain, "."))
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
