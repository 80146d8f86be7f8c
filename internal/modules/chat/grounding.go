package chat

import (
	"net/url"
	"strings"

	"github.com/samber/lo"

	"roamly/internal/ai"
)

// GroundingLinks keeps the Maps chunks that carry a usable http(s) link, in
// provider order. Everything else, including web chunks, is dropped.
func GroundingLinks(chunks []ai.GroundingChunk) []GroundingLink {
	return lo.FilterMap(chunks, func(c ai.GroundingChunk, _ int) (GroundingLink, bool) {
		if c.Maps == nil {
			return GroundingLink{}, false
		}
		uri := strings.TrimSpace(c.Maps.URI)
		if !usableLink(uri) {
			return GroundingLink{}, false
		}
		title := strings.TrimSpace(c.Maps.Title)
		if title == "" {
			title = defaultLinkTitle
		}
		return GroundingLink{Title: title, URI: uri, Source: SourceGoogleMaps}, true
	})
}

func usableLink(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
