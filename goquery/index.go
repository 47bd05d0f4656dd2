// Package goquery implements the page extractors on top of goquery CSS
// selectors.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/codeharvest"
	"golang.org/x/net/html"
)

// Defaults for the Maya SDK C++ reference.
const (
	DefaultBaseURL       = "https://help.autodesk.com/cloudhelp/2022/ENU/Maya-SDK/cpp_ref/"
	DefaultIndexURL      = DefaultBaseURL + "examples.html"
	DefaultIndexSelector = `ul > li > a[class="el"]`
)

// Ensure IndexExtractor implements codeharvest.IndexExtractor at compile time.
var _ codeharvest.IndexExtractor = (*IndexExtractor)(nil)

// IndexExtractor builds targets from the links of a listing page.
type IndexExtractor struct {
	// BaseURL is prepended verbatim to every link target.
	BaseURL string

	// Selector matches the listing anchors.
	Selector string
}

// NewIndexExtractor creates an IndexExtractor using the default selector.
func NewIndexExtractor(baseURL string) *IndexExtractor {
	return &IndexExtractor{
		BaseURL:  baseURL,
		Selector: DefaultIndexSelector,
	}
}

// ExtractTargets returns one target per matching anchor in document order.
// The URL is BaseURL followed by the href attribute and the file is the
// anchor's own text. Anchors without an href are skipped.
func (e *IndexExtractor) ExtractTargets(htmlContent string) ([]*codeharvest.Target, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, codeharvest.WrapError(codeharvest.EPARSE, err, "failed to parse listing HTML")
	}

	targets := []*codeharvest.Target{}
	doc.Find(e.selector()).Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists {
			return
		}
		targets = append(targets, &codeharvest.Target{
			URL:  e.BaseURL + href,
			File: ownText(sel),
		})
	})

	return targets, nil
}

func (e *IndexExtractor) selector() string {
	if e.Selector == "" {
		return DefaultIndexSelector
	}
	return e.Selector
}

// ownText returns the first text node directly under the selection, ignoring
// text nested in child elements.
func ownText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	for n := sel.Get(0).FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.TextNode {
			return n.Data
		}
	}
	return ""
}
