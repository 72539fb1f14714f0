package generator

import "context"

// MockLLM is a canned stand-in for local runs and tests; it never calls an
// external model.
type MockLLM struct{}

func (MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	return `{"slides":[` +
		`{"title":"Mock Deck","bullets":["generated without a model provider","edit config/config.json to use a real one"],"notes":"mock speaker notes"},` +
		`{"title":"Next Steps","bullets":["pass provider and api_key with the request"]}` +
		`]}`, nil
}
