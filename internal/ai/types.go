package ai

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model produced no text at all,
// usually because the prompt was blocked or the search step failed.
var ErrEmptyResponse = errors.New("model returned no content; it may have been blocked by safety settings or the search failed")

// Citation is a web source the model grounded its answer on.
type Citation struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

type Response struct {
	Text      string
	Citations []Citation
}

// Model sends a single prompt and returns the raw answer.
type Model interface {
	Generate(ctx context.Context, prompt string) (*Response, error)
	Name() string
}
