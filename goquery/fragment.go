package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/codeharvest"
)

// Doxygen markup of an example listing: one child div per source line.
const (
	DefaultContainerSelector = `div[class="contents"] > div[class="fragment"]`
	DefaultLineSelector      = "div"
)

// Ensure FragmentExtractor implements codeharvest.FragmentExtractor at compile time.
var _ codeharvest.FragmentExtractor = (*FragmentExtractor)(nil)

// FragmentExtractor reconstructs a code listing from an example page.
type FragmentExtractor struct {
	// ContainerSelector matches the element holding the listing lines.
	ContainerSelector string

	// LineSelector matches the direct children of the container that each
	// hold one line.
	LineSelector string
}

// NewFragmentExtractor creates a FragmentExtractor for Doxygen pages.
func NewFragmentExtractor() *FragmentExtractor {
	return &FragmentExtractor{
		ContainerSelector: DefaultContainerSelector,
		LineSelector:      DefaultLineSelector,
	}
}

// ExtractFragment joins the full text of every line element, terminating
// each with a newline. An empty container produces an empty fragment; a
// missing container is reported as EPARSE.
func (e *FragmentExtractor) ExtractFragment(url, htmlContent string) (*codeharvest.Fragment, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, codeharvest.WrapError(codeharvest.EPARSE, err, "failed to parse HTML of %s", url)
	}

	container := doc.Find(e.containerSelector())
	if container.Length() == 0 {
		return nil, codeharvest.Errorf(codeharvest.EPARSE, "no code fragment found in %s", url)
	}

	var b strings.Builder
	container.ChildrenFiltered(e.lineSelector()).Each(func(_ int, line *goquery.Selection) {
		b.WriteString(line.Text())
		b.WriteString("\n")
	})

	return &codeharvest.Fragment{
		SourceURL: url,
		Text:      b.String(),
	}, nil
}

func (e *FragmentExtractor) containerSelector() string {
	if e.ContainerSelector == "" {
		return DefaultContainerSelector
	}
	return e.ContainerSelector
}

func (e *FragmentExtractor) lineSelector() string {
	if e.LineSelector == "" {
		return DefaultLineSelector
	}
	return e.LineSelector
}
