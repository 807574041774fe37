package analysis

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = "台積電營收穩健成長，毛利率維持高檔。\n\n```json\n" + `{
  "financials": {
    "symbol": "2330",
    "companyName": "台積電",
    "currency": "TWD",
    "currentMonthRevenue": "2,600億 (Nov 2024)",
    "accumulatedRevenueYoY": "31.8%",
    "currentQuarterGrossMargin": 57.8,
    "accumulatedGrossMargin": "56.1 %",
    "accumulatedGrossMarginYoY": null
  },
  "news": [
    {
      "headline": "TSMC to build third Arizona fab",
      "source": "Reuters",
      "date": "2024-11-20",
      "summary": "Expansion in the US continues.",
      "tags": ["Expansion", "US_Cooperation"]
    }
  ],
  "score": "87.9%",
  "isHighGrowth": "yes",
  "summary": "成長強勁"
}` + "\n```\n"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain", input: `{"a":1}`, want: `{"a":1}`},
		{name: "prose around", input: "text {\"a\":{\"b\":2}} more", want: `{"a":{"b":2}}`},
		{name: "no braces", input: "sorry, nothing found", wantErr: ErrNoJSON},
		{name: "only opening", input: "{ oops", wantErr: ErrNoJSON},
		{name: "reversed", input: "} then {", wantErr: ErrNoJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResultSample(t *testing.T) {
	res, err := ParseResult(sampleResponse)
	require.NoError(t, err)

	f := res.Financials
	assert.Equal(t, "2330", f.Symbol)
	assert.Equal(t, "台積電", f.CompanyName)
	assert.Equal(t, "2,600億 (Nov 2024)", f.CurrentMonthRevenue)
	assert.Equal(t, Percent(31.8), f.AccumulatedRevenueYoY)
	assert.Equal(t, Percent(57.8), f.CurrentQuarterGrossMargin)
	assert.Equal(t, Percent(56.1), f.AccumulatedGrossMargin)
	assert.Equal(t, Percent(0), f.AccumulatedGrossMarginYoY)

	require.Len(t, res.News, 1)
	assert.Equal(t, TagList{"Expansion", "US_Cooperation"}, res.News[0].Tags)
	assert.Equal(t, "成長強勁", res.Summary)

	// not scored until Finalize
	assert.Equal(t, 0.0, res.Score)
}

func TestParseResultRetriesWithoutFences(t *testing.T) {
	text := "{\"summary\": \"ok\", \"news\": [```json\n]}"
	res, err := ParseResult(text)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Summary)
	assert.Empty(t, res.News)
}

func TestParseResultMalformed(t *testing.T) {
	_, err := ParseResult(`{"financials": {"symbol": }`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedJSON))
}

func TestParseResultMissingSections(t *testing.T) {
	res, err := ParseResult(`{"summary": "x"}`)
	require.NoError(t, err)
	assert.Equal(t, Financials{}, res.Financials)
	assert.NotNil(t, res.News)
	assert.Len(t, res.News, 0)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12.5%", 12.5},
		{" 12.5 % ", 12.5},
		{"$1,234.5", 1234.5},
		{"-3.2%", -3.2},
		{"+7", 7},
		{".5", 0.5},
		{"12.5B", 12.5},
		{"1e2", 100},
		{"N/A", 0},
		{"", 0},
		{"約 30%", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseNumber(tt.in), 1e-9)
		})
	}
}

func TestPercentUnmarshal(t *testing.T) {
	var v struct {
		A, B, C, D, E Percent
	}
	err := json.Unmarshal([]byte(`{"A": 4.5, "B": "22%", "C": null, "D": true, "E": {"x": 1}}`), &v)
	require.NoError(t, err)
	assert.Equal(t, Percent(4.5), v.A)
	assert.Equal(t, Percent(22), v.B)
	assert.Equal(t, Percent(0), v.C)
	assert.Equal(t, Percent(0), v.D)
	assert.Equal(t, Percent(0), v.E)
	assert.Equal(t, "22.00%", v.B.String())
	assert.True(t, v.B.Positive())
}

func TestTagListUnmarshal(t *testing.T) {
	var v struct {
		A, B, C TagList
	}
	err := json.Unmarshal([]byte(`{"A": ["Orders"], "B": "Expansion, Technology", "C": 5}`), &v)
	require.NoError(t, err)
	assert.Equal(t, TagList{"Orders"}, v.A)
	assert.Equal(t, TagList{"Expansion", "Technology"}, v.B)
	assert.Nil(t, v.C)
}
