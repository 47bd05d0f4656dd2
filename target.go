package codeharvest

import "context"

// Target identifies one example page to harvest and the file its fragment
// is written to.
type Target struct {
	URL  string `json:"url"`
	File string `json:"file"`
}

// Validate returns an error if the target contains invalid fields.
func (t *Target) Validate() error {
	if t.URL == "" {
		return Errorf(EINVALID, "target URL required")
	}
	if t.File == "" {
		return Errorf(EINVALID, "target file required for %s", t.URL)
	}
	return nil
}

// MergeTargets collapses targets sharing a URL into a single entry.
// Entries keep the position of the first occurrence of their URL, while the
// File of the last occurrence wins. Nil entries are dropped.
func MergeTargets(targets []*Target) []*Target {
	index := make(map[string]int, len(targets))
	merged := make([]*Target, 0, len(targets))
	for _, t := range targets {
		if t == nil {
			continue
		}
		if i, ok := index[t.URL]; ok {
			merged[i] = &Target{URL: t.URL, File: t.File}
			continue
		}
		index[t.URL] = len(merged)
		merged = append(merged, &Target{URL: t.URL, File: t.File})
	}
	return merged
}

// IndexExtractor reads the listing page of a documentation site.
type IndexExtractor interface {
	// ExtractTargets parses listing HTML and returns its targets in document
	// order. A page without matching links yields an empty slice.
	ExtractTargets(html string) ([]*Target, error)
}

// TargetStore persists the target list between the discovery and harvest
// passes.
type TargetStore interface {
	// SaveTargets replaces the stored list with targets.
	SaveTargets(ctx context.Context, targets []*Target) error

	// LoadTargets returns the stored list in its original order.
	// Returns ENOTFOUND if nothing has been stored.
	LoadTargets(ctx context.Context) ([]*Target, error)
}
