package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/pagegrab/models"
)

// textSelector matches the content-bearing elements. Nested matches (a <p>
// inside an <article>) are each reported.
var textSelector = cascadia.MustCompile(
	"p, h1, h2, h3, h4, h5, h6, article, section, div.content, div.article, div.text",
)

type textStrategy struct{}

func (textStrategy) Kind() models.ResourceKind { return models.KindText }

// WaitSelector is empty: text is read from whatever has rendered.
func (textStrategy) WaitSelector() string { return "" }

func (textStrategy) Extract(doc *goquery.Document, keyword string) []models.ResourceItem {
	items := []models.ResourceItem{}
	doc.FindMatcher(textSelector).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		items = append(items, models.TextBlock{
			Text:       text,
			TagName:    goquery.NodeName(s),
			ElementID:  s.AttrOr("id", ""),
			ClassNames: s.AttrOr("class", ""),
		})
	})
	return FilterByKeyword(items, keyword)
}
