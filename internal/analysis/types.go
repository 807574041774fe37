// Package analysis turns a model answer about one stock into a scored,
// source-linked result and provides the news category filters shown in the UI.
package analysis

import (
	"encoding/json"
	"strings"
)

// Financials holds the metrics the model is asked to look up. Percentages are
// plain numbers (12.5 means 12.5%).
type Financials struct {
	Symbol                    string  `json:"symbol"`
	CompanyName               string  `json:"companyName"`
	Currency                  string  `json:"currency"`
	CurrentMonthRevenue       string  `json:"currentMonthRevenue"`
	AccumulatedRevenueYoY     Percent `json:"accumulatedRevenueYoY"`
	CurrentQuarterGrossMargin Percent `json:"currentQuarterGrossMargin"`
	AccumulatedGrossMargin    Percent `json:"accumulatedGrossMargin"`
	AccumulatedGrossMarginYoY Percent `json:"accumulatedGrossMarginYoY"`
}

type NewsItem struct {
	Headline string  `json:"headline"`
	Source   string  `json:"source"`
	Date     string  `json:"date"`
	Summary  string  `json:"summary"`
	URL      string  `json:"url,omitempty"`
	Tags     TagList `json:"tags"`
}

// HasTag reports exact, case-sensitive membership.
func (n NewsItem) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

type Result struct {
	Financials   Financials `json:"financials"`
	News         []NewsItem `json:"news"`
	Score        float64    `json:"score"`
	IsHighGrowth bool       `json:"isHighGrowth"`
	Summary      string     `json:"summary"`
}

// Clone copies the result so callers sharing a cached answer can modify
// their own news list.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	cp := *r
	cp.News = make([]NewsItem, len(r.News))
	for i, n := range r.News {
		n.Tags = append(TagList(nil), n.Tags...)
		cp.News[i] = n
	}
	return &cp
}

// TagList accepts either a JSON array of strings or a single comma separated
// string; models are not always consistent about it.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		*t = out
		return nil
	}

	*t = nil
	return nil
}
