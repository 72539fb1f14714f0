package generator

import (
	"context"
	"errors"
	"strings"
)

// ErrNoSlides reports that no slides could be derived: the input was empty
// or whitespace-only and no model output was available.
var ErrNoSlides = errors.New("could not parse any slides from the input")

// Request carries one normalization run.
type Request struct {
	Text      string
	Guidance  string
	WithNotes bool
}

// Agent turns raw text into a bounded outline, going through the model when
// one is configured and degrading to heuristic segmentation when the model
// call fails or no model is available.
type Agent struct {
	llm LLMClient
}

// NewAgent creates an agent. A nil llm selects the heuristic-only path.
func NewAgent(llm LLMClient) *Agent {
	return &Agent{llm: llm}
}

// Normalize produces a non-empty outline or ErrNoSlides.
func (a *Agent) Normalize(ctx context.Context, req Request) (Outline, error) {
	if a.llm != nil {
		prompt := BuildOutlinePrompt(req.Text, req.Guidance, req.WithNotes)
		raw, err := a.llm.Complete(ctx, prompt)
		if err == nil && strings.TrimSpace(raw) != "" {
			return CoerceModelOutline(raw, req.Text, req.WithNotes), nil
		}
		// Model unavailable or empty: fall back to segmentation.
	}

	slides := Segment(req.Text)
	if len(slides) == 0 {
		return nil, ErrNoSlides
	}
	return slides, nil
}
