package codeharvest

import "context"

// Fragment is the code listing extracted from one example page.
type Fragment struct {
	SourceURL string

	// Text holds one line per source line, each terminated by "\n".
	// It is empty when the page carries an empty listing.
	Text string
}

// FragmentExtractor pulls the code listing out of an example page.
type FragmentExtractor interface {
	// ExtractFragment parses example page HTML fetched from url.
	// Returns EPARSE if the page has no listing container.
	ExtractFragment(url, html string) (*Fragment, error)
}

// FragmentWriter stores extracted fragments.
type FragmentWriter interface {
	// WriteFragment creates or replaces the file at path with the fragment
	// text, creating missing parent directories.
	// Returns EFILESYSTEM if the file cannot be written.
	WriteFragment(ctx context.Context, path string, frag *Fragment) error
}
