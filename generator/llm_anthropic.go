package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const anthropicVersion = "2023-06-01"

// AnthropicLLM implements LLMClient against the Anthropic messages API.
type AnthropicLLM struct {
	model   string
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewAnthropicLLM(cfg *LLMSettings) (*AnthropicLLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic api key missing; provide llm.api_key")
	}
	model := cfg.Model
	if model == "" {
		model = "claude-3-haiku-20240307"
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	return &AnthropicLLM{
		model:   model,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: llmRequestTimeout},
	}, nil
}

func (a *AnthropicLLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	body := `{"model":"","max_tokens":1200,"messages":[{"role":"user","content":""}]}`
	body, _ = sjson.Set(body, "model", a.model)
	body, _ = sjson.Set(body, "messages.0.content", prompt.User)
	if prompt.System != "" {
		body, _ = sjson.Set(body, "system", prompt.System)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader([]byte(body)))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic: status %d: %s", resp.StatusCode, compactPrefix(string(respBody), 200))
	}

	// The response content is a list of typed blocks; join the text ones.
	var sb strings.Builder
	for _, blk := range gjson.GetBytes(respBody, "content").Array() {
		if blk.Get("type").String() == "text" {
			sb.WriteString(blk.Get("text").String())
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("anthropic: empty content")
	}
	return sb.String(), nil
}
