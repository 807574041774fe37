package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strings"

	"github.com/camuig/stockgrowth/internal/ai"
	"github.com/camuig/stockgrowth/internal/analysis"
	"github.com/camuig/stockgrowth/internal/storage"
)

// half circumference of the r=80 gauge arc
var gaugeArcLength = math.Pi * 80

var templateFuncs = template.FuncMap{
	"fixed1":    func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"fixed2":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"tagLabel":  analysis.TagLabel,
	"highlight": analysis.Highlight,
}

type PageData struct {
	Query     string
	Error     string
	Result    *ResultView
	Watchlist []storage.WatchlistItem
	Threshold float64
}

type ResultView struct {
	*analysis.Result
	Gauge        GaugeView
	News         []NewsView
	Filters      []FilterChip
	Filter       string
	Visible      int
	EmptyMessage string
	InWatchlist  bool
}

type GaugeView struct {
	Dash   float64
	Arc    float64
	Target float64
}

type NewsView struct {
	analysis.NewsItem
	Categories string
	Hidden     bool
}

type FilterChip struct {
	ID           string
	Label        string
	Color        string
	Active       bool
	EmptyMessage string
}

func emptyMessage(c analysis.Category) string {
	if c.ID == analysis.CategoryAll {
		return "未找到符合特定策略標準的近期新聞。"
	}
	return fmt.Sprintf("在「%s」類別中未找到相關新聞。", c.Label)
}

// newResultView precomputes category membership for every item so the page
// can switch filters without another analysis.
func newResultView(res *analysis.Result, filter string, threshold float64, watchlist []storage.WatchlistItem) *ResultView {
	active, ok := analysis.LookupCategory(filter)
	if !ok {
		active, _ = analysis.LookupCategory(analysis.CategoryAll)
	}

	v := &ResultView{
		Result: res,
		Filter: active.ID,
		Gauge: GaugeView{
			Dash:   analysis.GaugeValue(res.Score) / 100 * gaugeArcLength,
			Arc:    gaugeArcLength,
			Target: threshold,
		},
		EmptyMessage: emptyMessage(active),
	}

	for _, c := range analysis.Categories {
		v.Filters = append(v.Filters, FilterChip{
			ID:           c.ID,
			Label:        c.Label,
			Color:        c.Color,
			Active:       c.ID == active.ID,
			EmptyMessage: emptyMessage(c),
		})
	}

	for _, item := range res.News {
		var cats []string
		for _, c := range analysis.Categories {
			if c.Matches(item) {
				cats = append(cats, c.ID)
			}
		}
		hidden := !active.Matches(item)
		if !hidden {
			v.Visible++
		}
		v.News = append(v.News, NewsView{
			NewsItem:   item,
			Categories: strings.Join(cats, " "),
			Hidden:     hidden,
		})
	}

	symbol := storage.NormalizeSymbol(res.Financials.Symbol)
	for _, w := range watchlist {
		if w.Symbol == symbol {
			v.InWatchlist = true
			break
		}
	}

	return v
}

// userMessage is the single line shown to the user for a failed analysis.
func userMessage(err error) string {
	switch {
	case errors.Is(err, analysis.ErrEmptyQuery):
		return "請輸入股票代號或公司名稱。"
	case errors.Is(err, ai.ErrEmptyResponse):
		return "AI 未回傳內容，可能是被安全設定阻擋或搜尋失敗。"
	case errors.Is(err, analysis.ErrNoJSON):
		return "無法解析 AI 回傳格式 (找不到 JSON)"
	case errors.Is(err, analysis.ErrMalformedJSON):
		return "資料格式錯誤，請重試"
	case errors.Is(err, context.DeadlineExceeded):
		return "AI 回應逾時，請稍後再試"
	default:
		return "無法取得數據，請稍後再試"
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, analysis.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
