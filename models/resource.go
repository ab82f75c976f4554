package models

import (
	"fmt"
	"strings"
)

// ResourceKind is the category of embedded content a crawl is looking for.
type ResourceKind string

const (
	KindImage ResourceKind = "image"
	KindVideo ResourceKind = "video"
	KindAudio ResourceKind = "audio"
	KindText  ResourceKind = "text"
)

// ParseResourceKind normalises a client-supplied kind. An empty value means
// image. Unknown values are returned as-is so the crawler can reject them
// with ErrCodeUnsupportedKind.
func ParseResourceKind(s string) ResourceKind {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return KindImage
	}
	return ResourceKind(s)
}

// Origin records which DOM shape a media source was found in.
type Origin string

const (
	OriginDirectTag     Origin = "direct"
	OriginSourceTag     Origin = "source"
	OriginEmbeddedFrame Origin = "iframe"
)

// ResourceItem is one extracted record. The set of implementations is closed:
// ImageRef, VideoRef, AudioRef and TextBlock.
type ResourceItem interface {
	// Kind reports which resource kind produced the item.
	Kind() ResourceKind

	// MatchText is the field keyword filtering runs against: the source URL
	// for media, the text content for text blocks.
	MatchText() string
}

// ImageRef is an <img> source.
type ImageRef struct {
	SourceURL string `json:"sourceUrl"`
}

func (ImageRef) Kind() ResourceKind  { return KindImage }
func (r ImageRef) MatchText() string { return r.SourceURL }
func (r ImageRef) String() string    { return r.SourceURL }

// VideoRef is a video source from a <video>, <source> or embedded <iframe>.
type VideoRef struct {
	SourceURL string `json:"sourceUrl"`
	Origin    Origin `json:"origin"`
}

func (VideoRef) Kind() ResourceKind  { return KindVideo }
func (r VideoRef) MatchText() string { return r.SourceURL }
func (r VideoRef) String() string    { return fmt.Sprintf("%s (%s)", r.SourceURL, r.Origin) }

// AudioRef is an audio source from an <audio> or <source> element.
type AudioRef struct {
	SourceURL string `json:"sourceUrl"`
	Origin    Origin `json:"origin"`
}

func (AudioRef) Kind() ResourceKind  { return KindAudio }
func (r AudioRef) MatchText() string { return r.SourceURL }
func (r AudioRef) String() string    { return fmt.Sprintf("%s (%s)", r.SourceURL, r.Origin) }

// TextBlock is the trimmed text content of a content-bearing element,
// together with the element's tag, id and class attributes.
type TextBlock struct {
	Text       string `json:"text"`
	TagName    string `json:"tag"`
	ElementID  string `json:"id"`
	ClassNames string `json:"class"`
}

func (TextBlock) Kind() ResourceKind  { return KindText }
func (b TextBlock) MatchText() string { return b.Text }
