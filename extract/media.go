package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/pagegrab/models"
)

// videoHosts are substrings identifying embedded players of known video
// hosting sites.
var videoHosts = []string{
	"youtube",
	"youtu.be",
	"vimeo",
	"dailymotion",
	"player.bilibili",
}

// mediaSource is one DOM shape a media kind can be found in.
type mediaSource struct {
	origin models.Origin
	sel    cascadia.Selector

	// accept is an extra predicate on the (already absolute) source.
	accept func(src string) bool
}

// mediaStrategy unions several sources. Sources are visited in order and
// each contributes its matches in document order.
type mediaStrategy struct {
	kind    models.ResourceKind
	wait    string
	sources []mediaSource
	build   func(src string, origin models.Origin) models.ResourceItem
}

func (m *mediaStrategy) Kind() models.ResourceKind { return m.kind }
func (m *mediaStrategy) WaitSelector() string      { return m.wait }

// Extract ignores keyword; the session applies FilterByKeyword to every kind.
func (m *mediaStrategy) Extract(doc *goquery.Document, _ string) []models.ResourceItem {
	items := []models.ResourceItem{}
	for _, source := range m.sources {
		doc.FindMatcher(source.sel).Each(func(_ int, s *goquery.Selection) {
			src := strings.TrimSpace(s.AttrOr("src", ""))
			if src == "" || !isAbsolute(src) {
				return
			}
			if source.accept != nil && !source.accept(src) {
				return
			}
			items = append(items, m.build(src, source.origin))
		})
	}
	return items
}

var imageStrategy = &mediaStrategy{
	kind: models.KindImage,
	wait: "img",
	sources: []mediaSource{
		{origin: models.OriginDirectTag, sel: cascadia.MustCompile("img")},
	},
	build: func(src string, _ models.Origin) models.ResourceItem {
		return models.ImageRef{SourceURL: src}
	},
}

var videoStrategy = &mediaStrategy{
	kind: models.KindVideo,
	wait: `video, source[type*="video"], iframe[src*="youtube"], iframe[src*="vimeo"]`,
	sources: []mediaSource{
		{origin: models.OriginDirectTag, sel: cascadia.MustCompile("video")},
		{origin: models.OriginSourceTag, sel: cascadia.MustCompile(`source[type*="video"]`)},
		{origin: models.OriginEmbeddedFrame, sel: cascadia.MustCompile("iframe"), accept: isVideoEmbed},
	},
	build: func(src string, origin models.Origin) models.ResourceItem {
		return models.VideoRef{SourceURL: src, Origin: origin}
	},
}

var audioStrategy = &mediaStrategy{
	kind: models.KindAudio,
	wait: `audio, source[type*="audio"]`,
	sources: []mediaSource{
		{origin: models.OriginDirectTag, sel: cascadia.MustCompile("audio")},
		{origin: models.OriginSourceTag, sel: cascadia.MustCompile(`source[type*="audio"]`)},
	},
	build: func(src string, origin models.Origin) models.ResourceItem {
		return models.AudioRef{SourceURL: src, Origin: origin}
	},
}

// isVideoEmbed reports whether an iframe source points at a video player.
func isVideoEmbed(src string) bool {
	lower := strings.ToLower(src)
	for _, host := range videoHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return strings.Contains(lower, "video")
}
