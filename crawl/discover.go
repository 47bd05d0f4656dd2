package crawl

import (
	"context"
	"log/slog"

	"github.com/fwojciec/codeharvest"
)

// Discoverer runs the discovery pass.
type Discoverer struct {
	Fetcher codeharvest.Fetcher
	Index   codeharvest.IndexExtractor

	// Store receives the discovered targets. When nil, Discover only
	// returns them.
	Store codeharvest.TargetStore

	// AllowedDomain restricts the listing page to one host and its
	// subdomains. Empty disables the check.
	AllowedDomain string

	Logger *slog.Logger
}

// Discover fetches the listing page at indexURL and returns its targets,
// one per URL, in listing order. When a URL is listed more than once the
// file of its last entry is kept. The targets are saved to Store if set.
func (d *Discoverer) Discover(ctx context.Context, indexURL string) ([]*codeharvest.Target, error) {
	logger := loggerOrDiscard(d.Logger)

	if !InScope(indexURL, d.AllowedDomain) {
		return nil, codeharvest.Errorf(codeharvest.EOUTOFSCOPE, "index %s is outside allowed domain %s", indexURL, d.AllowedDomain)
	}

	html, err := d.Fetcher.Fetch(ctx, indexURL)
	if err != nil {
		return nil, err
	}

	listed, err := d.Index.ExtractTargets(html)
	if err != nil {
		return nil, err
	}

	targets := MergeListed(listed, logger)
	logger.Info("discovered targets",
		"index", indexURL,
		"listed", len(listed),
		"targets", len(targets),
	)

	if d.Store != nil {
		if err := d.Store.SaveTargets(ctx, targets); err != nil {
			return nil, err
		}
	}

	return targets, nil
}

// MergeListed applies codeharvest.MergeTargets and logs every URL whose
// destination was replaced by a later entry.
func MergeListed(listed []*codeharvest.Target, logger *slog.Logger) []*codeharvest.Target {
	logger = loggerOrDiscard(logger)

	files := make(map[string]string, len(listed))
	for _, t := range listed {
		if t == nil {
			continue
		}
		if file, ok := files[t.URL]; ok && file != t.File {
			logger.Warn("duplicate target url, keeping last file",
				"url", t.URL,
				"previous", file,
				"file", t.File,
			)
		}
		files[t.URL] = t.File
	}

	return codeharvest.MergeTargets(listed)
}
