package analysis

import (
	"strings"

	"github.com/camuig/stockgrowth/internal/ai"
)

// AttachSources links news items to grounding citations. An item takes the
// first citation whose title contains its headline, or whose title is
// contained in it (case-insensitive). Otherwise it takes the next citation
// with a URI from a cursor shared by all unmatched items, wrapping around.
// Items keep their existing URL when there is nothing to assign.
func AttachSources(news []NewsItem, citations []ai.Citation) []NewsItem {
	if len(citations) == 0 || len(news) == 0 {
		return news
	}

	out := make([]NewsItem, len(news))
	cursor := 0

	for i, item := range news {
		out[i] = item

		if c, ok := matchByTitle(item.Headline, citations); ok && c.URI != "" {
			out[i].URL = c.URI
			continue
		}

		for attempts := 0; attempts < len(citations); attempts++ {
			c := citations[cursor]
			cursor = (cursor + 1) % len(citations)
			if c.URI != "" {
				out[i].URL = c.URI
				break
			}
		}
	}

	return out
}

func matchByTitle(headline string, citations []ai.Citation) (ai.Citation, bool) {
	h := strings.ToLower(headline)
	for _, c := range citations {
		if c.Title == "" {
			continue
		}
		t := strings.ToLower(c.Title)
		if strings.Contains(t, h) || strings.Contains(h, t) {
			return c, true
		}
	}
	return ai.Citation{}, false
}
