package crawler

import (
	"net/url"
	"strings"

	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/pagegrab/models"
)

// Admit reports whether a request of the given category may load during a
// crawl for kind. The page itself, its scripts and its data calls always
// load since they build the DOM. Images load only for image crawls and
// media only for video or audio crawls. Everything else is aborted.
func Admit(category proto.NetworkResourceType, kind models.ResourceKind) bool {
	switch category {
	case proto.NetworkResourceTypeDocument,
		proto.NetworkResourceTypeScript,
		proto.NetworkResourceTypeXHR,
		proto.NetworkResourceTypeFetch:
		return true
	case proto.NetworkResourceTypeImage:
		return kind == models.KindImage
	case proto.NetworkResourceTypeMedia:
		return kind == models.KindVideo || kind == models.KindAudio
	default:
		return false
	}
}

// admissionFor builds the per-request decision for a crawl. With blockAds
// set, subresource requests to known ad and tracking hosts are aborted even
// when their category would be admitted. The target document is never
// subject to the blocklist.
func admissionFor(kind models.ResourceKind, blockAds bool) AdmissionFunc {
	return func(category proto.NetworkResourceType, requestURL string) bool {
		if !Admit(category, kind) {
			return false
		}
		if blockAds && category != proto.NetworkResourceTypeDocument {
			if u, err := url.Parse(requestURL); err == nil && isAdDomain(u.Hostname()) {
				return false
			}
		}
		return true
	}
}

// adDomains lists ad and tracking hosts aborted when BlockAds is set.
var adDomains = map[string]struct{}{
	"doubleclick.net":       {},
	"googlesyndication.com": {},
	"googleadservices.com":  {},
	"google-analytics.com":  {},
	"googletagmanager.com":  {},
	"googletagservices.com": {},
	"facebook.net":          {},
	"adnxs.com":             {},
	"adsrvr.org":            {},
	"amazon-adsystem.com":   {},
	"criteo.com":            {},
	"criteo.net":            {},
	"outbrain.com":          {},
	"taboola.com":           {},
	"moatads.com":           {},
	"pubmatic.com":          {},
	"rubiconproject.com":    {},
	"scorecardresearch.com": {},
	"quantserve.com":        {},
	"hotjar.com":            {},
	"mixpanel.com":          {},
	"segment.io":            {},
	"segment.com":           {},
	"analytics.twitter.com": {},
	"ads-twitter.com":       {},
	"chartbeat.com":         {},
	"chartbeat.net":         {},
	"optimizely.com":        {},
	"zedo.com":              {},
	"media.net":             {},
	"contextweb.com":        {},
	"bidswitch.net":         {},
	"openx.net":             {},
	"casalemedia.com":       {},
	"demdex.net":            {},
	"krxd.net":              {},
	"bluekai.com":           {},
	"exelator.com":          {},
	"turn.com":              {},
	"mathtag.com":           {},
	"serving-sys.com":       {},
	"eyeota.net":            {},
	"agkn.com":              {},
	"rlcdn.com":             {},
	"sharethis.com":         {},
	"addthis.com":           {},
	"consensu.org":          {},
}

// isAdDomain reports whether host or one of its parent domains is listed
// in adDomains, so "pagead2.googlesyndication.com" matches.
func isAdDomain(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	for host != "" {
		if _, ok := adDomains[host]; ok {
			return true
		}
		_, parent, found := strings.Cut(host, ".")
		if !found {
			return false
		}
		host = parent
	}
	return false
}
