package server

import (
	"encoding/json"
	"os"

	"deckforge/generator"
)

// Config holds the service settings.
type Config struct {
	ServerAddr string     `json:"server_addr,omitempty"`
	LLM        *LLMConfig `json:"llm,omitempty"`
}

// LLMConfig is the default model provider wiring. A request may override it
// with its own provider and api_key form fields.
type LLMConfig struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
}

// Settings converts the config block into provider settings.
func (c *LLMConfig) Settings() generator.LLMSettings {
	if c == nil {
		return generator.LLMSettings{}
	}
	return generator.LLMSettings{
		Provider: c.Provider,
		Model:    c.Model,
		APIKey:   c.APIKey,
		BaseURL:  c.BaseURL,
	}
}

// LoadConfig reads JSON config from disk. A missing llm block is fine: the
// service then outlines heuristically.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
