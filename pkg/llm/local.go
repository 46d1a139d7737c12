package llm

import (
	"context"
	"net/http"
	"strings"
	"time"
)

var _ Provider = (*LocalProvider)(nil)

// LocalProvider talks to a locally hosted model server speaking the Ollama
// chat API. No credential is needed but the endpoint is mandatory.
type LocalProvider struct {
	cfg    ProviderConfig
	client *http.Client
}

func NewLocalProvider(cfg ProviderConfig) (*LocalProvider, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, endpointError("Local")
	}
	return &LocalProvider{cfg: cfg, client: newHTTPClient()}, nil
}

type localRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  localOptions  `json:"options"`
}

type localOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type localResponse struct {
	Message *struct {
		Content *string `json:"content"`
	} `json:"message"`
}

func (p *LocalProvider) GenerateResponse(ctx context.Context, system, prompt string, temperature float64) (*Response, error) {
	start := time.Now()

	req := localRequest{
		Model:    p.cfg.Model,
		Messages: chatMessages(system, prompt),
		Options: localOptions{
			Temperature: temperature,
			NumPredict:  intOption(p.cfg.Options, "max_tokens", 0),
		},
	}
	url := strings.TrimRight(p.cfg.Endpoint, "/") + "/api/chat"
	body, err := postJSON(ctx, p.client, p.ProviderName(), p.cfg.Model, url, req, nil)
	if err != nil {
		return nil, err
	}

	var resp localResponse
	if err := decode(p.ProviderName(), body, &resp); err != nil {
		return nil, err
	}
	if resp.Message == nil || resp.Message.Content == nil {
		return nil, contentError(p.ProviderName())
	}

	return &Response{
		Content:  *resp.Message.Content,
		Model:    p.cfg.Model,
		Duration: time.Since(start),
	}, nil
}

func (p *LocalProvider) ModelName() string    { return p.cfg.Model }
func (p *LocalProvider) ProviderName() string { return "Local" }
