package analysis

import (
	"regexp"
	"strings"
)

const (
	CategoryAll           = "All"
	CategoryExpansion     = "Expansion"
	CategoryInvestment    = "Investment"
	CategoryTechnology    = "Technology"
	CategoryOrders        = "Orders"
	CategoryUSCooperation = "US_Cooperation"
)

// Category is a news filter. Keywords runs against the lower-cased headline
// and summary when the model forgot to tag an item.
type Category struct {
	ID       string
	Label    string
	Color    string
	Keywords *regexp.Regexp
}

// Categories in display order.
var Categories = []Category{
	{ID: CategoryAll, Label: "全部", Color: "slate"},
	{ID: CategoryExpansion, Label: "擴廠/設廠", Color: "blue",
		Keywords: regexp.MustCompile(`擴廠|設廠|expansion|factory|location`)},
	{ID: CategoryInvestment, Label: "投資/資本支出", Color: "indigo",
		Keywords: regexp.MustCompile(`投資|資本支出|investment|capex`)},
	{ID: CategoryTechnology, Label: "新技術", Color: "violet",
		Keywords: regexp.MustCompile(`技術|研發|technology|r&d`)},
	{ID: CategoryOrders, Label: "訂單", Color: "emerald",
		Keywords: regexp.MustCompile(`訂單|銷量|order|volume`)},
	{ID: CategoryUSCooperation, Label: "與美合作", Color: "rose",
		Keywords: regexp.MustCompile(`美國|合作|us|cooperation`)},
}

func LookupCategory(id string) (Category, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// TagLabel returns the display label for a model tag, or the tag itself.
func TagLabel(tag string) string {
	if tag == CategoryAll {
		return tag
	}
	if c, ok := LookupCategory(tag); ok {
		return c.Label
	}
	return tag
}

// FilterNews keeps the items belonging to category. An empty id means All.
// Unknown categories match nothing.
func FilterNews(news []NewsItem, id string) []NewsItem {
	if id == "" || id == CategoryAll {
		return news
	}

	cat, ok := LookupCategory(id)
	if !ok {
		return []NewsItem{}
	}

	out := make([]NewsItem, 0, len(news))
	for _, item := range news {
		if cat.Matches(item) {
			out = append(out, item)
		}
	}
	return out
}

func (c Category) Matches(item NewsItem) bool {
	if c.ID == CategoryAll {
		return true
	}
	if item.HasTag(c.ID) {
		return true
	}
	if c.Keywords == nil {
		return false
	}
	content := strings.ToLower(item.Headline + item.Summary)
	return c.Keywords.MatchString(content)
}
