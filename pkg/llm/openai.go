package llm

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

var _ Provider = (*OpenAIProvider)(nil)

type OpenAIProvider struct {
	cfg    ProviderConfig
	client *http.Client
}

func NewOpenAIProvider(cfg ProviderConfig) (*OpenAIProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, authError("OpenAI")
	}
	return &OpenAIProvider{cfg: cfg, client: newHTTPClient()}, nil
}

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, system, prompt string, temperature float64) (*Response, error) {
	start := time.Now()

	endpoint := p.cfg.Endpoint
	if endpoint == "" {
		endpoint = openAIEndpoint
	}

	req := openAIRequest{
		Model:       p.cfg.Model,
		Messages:    chatMessages(system, prompt),
		Temperature: temperature,
		MaxTokens:   intOption(p.cfg.Options, "max_tokens", 0),
	}
	body, err := postJSON(ctx, p.client, p.ProviderName(), p.cfg.Model, endpoint, req, map[string]string{
		"Authorization": "Bearer " + p.cfg.APIKey,
	})
	if err != nil {
		return nil, err
	}

	content, usage, err := parseOpenAIResponse(p.ProviderName(), body)
	if err != nil {
		return nil, err
	}
	return &Response{
		Content:    content,
		Model:      p.cfg.Model,
		Duration:   time.Since(start),
		TokenUsage: usage,
	}, nil
}

func (p *OpenAIProvider) ModelName() string    { return p.cfg.Model }
func (p *OpenAIProvider) ProviderName() string { return "OpenAI" }

// --- wire types shared with Azure OpenAI ---

type openAIRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func parseOpenAIResponse(provider string, body []byte) (string, *TokenUsage, error) {
	var resp openAIResponse
	if err := decode(provider, body, &resp); err != nil {
		return "", nil, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return "", nil, contentError(provider)
	}

	var usage *TokenUsage
	if resp.Usage != nil {
		usage = &TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return *resp.Choices[0].Message.Content, usage, nil
}
