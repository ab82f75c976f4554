// Package extract turns a rendered DOM snapshot into typed resource records.
//
// There is one Strategy per resource kind. Strategies are pure functions of
// the snapshot, so the browser only has to hand over page HTML.
package extract

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/pagegrab/models"
	"golang.org/x/net/html"
)

// Strategy extracts one resource kind from a document.
type Strategy interface {
	// Kind is the resource kind this strategy produces.
	Kind() models.ResourceKind

	// WaitSelector is the CSS selector worth waiting for before the DOM is
	// snapshotted. Empty means no wait.
	WaitSelector() string

	// Extract returns the matching records in document order. It never
	// fails: nothing found is an empty slice.
	Extract(doc *goquery.Document, keyword string) []models.ResourceItem
}

var registry = map[models.ResourceKind]Strategy{
	models.KindImage: imageStrategy,
	models.KindVideo: videoStrategy,
	models.KindAudio: audioStrategy,
	models.KindText:  textStrategy{},
}

// For returns the strategy for kind.
func For(kind models.ResourceKind) (Strategy, bool) {
	s, ok := registry[kind]
	return s, ok
}

// Kinds lists the supported resource kinds in a stable order.
func Kinds() []models.ResourceKind {
	kinds := make([]models.ResourceKind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// ParseDocument parses a rendered HTML snapshot.
func ParseDocument(rawHTML string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromNode(root), nil
}

// isAbsolute reports whether src is a scheme-qualified http(s) URL.
func isAbsolute(src string) bool {
	return strings.HasPrefix(src, "http")
}
