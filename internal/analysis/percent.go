package analysis

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
)

// Percent is a number the model may send as 12.5, "12.5%", "$1,234" or
// something unusable. Unusable values decode to 0 instead of failing the
// whole document.
type Percent float64

var (
	percentNoise  = regexp.MustCompile(`[%$,\s]`)
	leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

func (p *Percent) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = Percent(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = Percent(ParseNumber(s))
		return nil
	}

	*p = 0
	return nil
}

// ParseNumber strips percent signs, dollar signs, thousands separators and
// whitespace, then reads the leading decimal number. "12.5B" is 12.5; text
// with no leading number is 0.
func ParseNumber(s string) float64 {
	cleaned := percentNoise.ReplaceAllString(s, "")
	m := leadingNumber.FindString(cleaned)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func (p Percent) Float() float64 {
	return float64(p)
}

func (p Percent) String() string {
	return strconv.FormatFloat(float64(p), 'f', 2, 64) + "%"
}

// Positive is used for the up/down arrow next to growth figures.
func (p Percent) Positive() bool {
	return p > 0
}
