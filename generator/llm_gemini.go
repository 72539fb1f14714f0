package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// GeminiLLM implements LLMClient against the Google Generative Language API.
type GeminiLLM struct {
	model   string
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGeminiLLM(cfg *LLMSettings) (*GeminiLLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key missing; provide llm.api_key")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	return &GeminiLLM{
		model:   model,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: llmRequestTimeout},
	}, nil
}

func (g *GeminiLLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	// generateContent has no separate system role on this endpoint; fold the
	// system text into the single user part.
	text := prompt.User
	if prompt.System != "" {
		text = prompt.System + "\n\n" + prompt.User
	}
	body, _ := sjson.Set(`{"contents":[{"parts":[{"text":""}]}]}`, "contents.0.parts.0.text", text)

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader([]byte(body)))
	if err != nil {
		return "", err
	}
	req.Header.Set("content-type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini: status %d: %s", resp.StatusCode, compactPrefix(string(respBody), 200))
	}

	text = gjson.GetBytes(respBody, "candidates.0.content.parts.0.text").String()
	if text == "" {
		return "", errors.New("gemini: empty candidates")
	}
	return text, nil
}
