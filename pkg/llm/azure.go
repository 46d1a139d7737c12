package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	azureAPIVersion       = "2023-05-15"
	azureDefaultMaxTokens = 800
)

var _ Provider = (*AzureOpenAIProvider)(nil)

// AzureOpenAIProvider talks to an Azure OpenAI deployment; the configured
// model is used as the deployment name.
type AzureOpenAIProvider struct {
	cfg    ProviderConfig
	client *http.Client
}

func NewAzureOpenAIProvider(cfg ProviderConfig) (*AzureOpenAIProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, authError("Azure OpenAI")
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, endpointError("Azure OpenAI")
	}
	return &AzureOpenAIProvider{cfg: cfg, client: newHTTPClient()}, nil
}

func (p *AzureOpenAIProvider) deploymentURL() string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(p.cfg.Endpoint, "/"), p.cfg.Model, azureAPIVersion)
}

func (p *AzureOpenAIProvider) GenerateResponse(ctx context.Context, system, prompt string, temperature float64) (*Response, error) {
	start := time.Now()

	req := openAIRequest{
		Model:       p.cfg.Model,
		Messages:    chatMessages(system, prompt),
		Temperature: temperature,
		MaxTokens:   intOption(p.cfg.Options, "max_tokens", azureDefaultMaxTokens),
	}
	body, err := postJSON(ctx, p.client, p.ProviderName(), p.cfg.Model, p.deploymentURL(), req, map[string]string{
		"api-key": p.cfg.APIKey,
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

func (p *AzureOpenAIProvider) ModelName() string    { return p.cfg.Model }
func (p *AzureOpenAIProvider) ProviderName() string { return "Azure OpenAI" }
