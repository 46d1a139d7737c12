package llm

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicEndpoint         = "https://api.anthropic.com/v1/messages"
	anthropicVersion          = "2023-06-01"
	anthropicDefaultMaxTokens = 1024
)

var _ Provider = (*AnthropicProvider)(nil)

type AnthropicProvider struct {
	cfg    ProviderConfig
	client *http.Client
}

func NewAnthropicProvider(cfg ProviderConfig) (*AnthropicProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, authError("Anthropic")
	}
	return &AnthropicProvider{cfg: cfg, client: newHTTPClient()}, nil
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type anthropicResponse struct {
	Content []struct {
		Type string  `json:"type"`
		Text *string `json:"text"`
	} `json:"content"`
}

func (p *AnthropicProvider) GenerateResponse(ctx context.Context, system, prompt string, temperature float64) (*Response, error) {
	start := time.Now()

	endpoint := p.cfg.Endpoint
	if endpoint == "" {
		endpoint = anthropicEndpoint
	}

	// The Messages API only accepts user/assistant turns; the system prompt
	// travels in its own top-level field.
	req := anthropicRequest{
		Model:       p.cfg.Model,
		System:      system,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
		MaxTokens:   intOption(p.cfg.Options, "max_tokens", anthropicDefaultMaxTokens),
	}
	body, err := postJSON(ctx, p.client, p.ProviderName(), p.cfg.Model, endpoint, req, map[string]string{
		"x-api-key":         p.cfg.APIKey,
		"anthropic-version": anthropicVersion,
	})
	if err != nil {
		return nil, err
	}

	var resp anthropicResponse
	if err := decode(p.ProviderName(), body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == nil {
		return nil, contentError(p.ProviderName())
	}

	return &Response{
		Content:  *resp.Content[0].Text,
		Model:    p.cfg.Model,
		Duration: time.Since(start),
	}, nil
}

func (p *AnthropicProvider) ModelName() string    { return p.cfg.Model }
func (p *AnthropicProvider) ProviderName() string { return "Anthropic" }
