package mock

import "github.com/fwojciec/codeharvest"

// Compile-time interface verification.
var (
	_ codeharvest.IndexExtractor    = (*IndexExtractor)(nil)
	_ codeharvest.FragmentExtractor = (*FragmentExtractor)(nil)
)

// IndexExtractor is a mock implementation of codeharvest.IndexExtractor.
type IndexExtractor struct {
	ExtractTargetsFn func(html string) ([]*codeharvest.Target, error)
}

func (e *IndexExtractor) ExtractTargets(html string) ([]*codeharvest.Target, error) {
	return e.ExtractTargetsFn(html)
}

// FragmentExtractor is a mock implementation of codeharvest.FragmentExtractor.
type FragmentExtractor struct {
	ExtractFragmentFn func(url, html string) (*codeharvest.Fragment, error)
}

func (e *FragmentExtractor) ExtractFragment(url, html string) (*codeharvest.Fragment, error) {
	return e.ExtractFragmentFn(url, html)
}
