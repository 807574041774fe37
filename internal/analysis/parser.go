package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyQuery    = errors.New("query is empty")
	ErrNoJSON        = errors.New("no JSON object found in model response")
	ErrMalformedJSON = errors.New("model response JSON is malformed")
)

// rawResult mirrors Result but ignores the model's own score and flag, which
// are always recomputed, so a stray "85%" there cannot fail the parse.
type rawResult struct {
	Financials *Financials `json:"financials"`
	News       []NewsItem  `json:"news"`
	Summary    string      `json:"summary"`
}

// ExtractJSON returns the text between the first '{' and the last '}'.
func ExtractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}

// ParseResult extracts the JSON document from free-form model output. When the
// first attempt fails, markdown fences are removed and parsing is retried once.
// The returned result is not yet scored; see Finalize.
func ParseResult(text string) (*Result, error) {
	jsonStr, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	raw, firstErr := decode(jsonStr)
	if firstErr != nil {
		cleaned := strings.ReplaceAll(jsonStr, "```json", "")
		cleaned = strings.ReplaceAll(cleaned, "```", "")

		var retryErr error
		raw, retryErr = decode(cleaned)
		if retryErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, retryErr)
		}
	}

	res := &Result{
		News:    raw.News,
		Summary: raw.Summary,
	}
	if raw.Financials != nil {
		res.Financials = *raw.Financials
	}
	if res.News == nil {
		res.News = []NewsItem{}
	}
	return res, nil
}

func decode(s string) (*rawResult, error) {
	var raw rawResult
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}
