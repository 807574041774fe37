package analysis

import "regexp"

var highlightRegex = regexp.MustCompile(`(?i)(擴廠|設廠|投資|資本支出|技術|訂單|美國|合作|Expansion|Factory|Investment|Capex|Technology|Order|US|Cooperation)`)

// Segment is a run of summary text; Keyword segments are emphasized.
type Segment struct {
	Text    string
	Keyword bool
}

// Highlight splits text around strategic keywords.
func Highlight(text string) []Segment {
	if text == "" {
		return nil
	}

	var out []Segment
	last := 0
	for _, loc := range highlightRegex.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			out = append(out, Segment{Text: text[last:loc[0]]})
		}
		out = append(out, Segment{Text: text[loc[0]:loc[1]], Keyword: true})
		last = loc[1]
	}
	if last < len(text) {
		out = append(out, Segment{Text: text[last:]})
	}
	return out
}
