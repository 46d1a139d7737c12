package llm

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"
)

const (
	huggingFaceEndpoint         = "https://api-inference.huggingface.co/models/"
	huggingFaceDefaultMaxLength = 1024
)

var _ Provider = (*HuggingFaceProvider)(nil)

type HuggingFaceProvider struct {
	cfg    ProviderConfig
	client *http.Client
}

func NewHuggingFaceProvider(cfg ProviderConfig) (*HuggingFaceProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, authError("HuggingFace")
	}
	return &HuggingFaceProvider{cfg: cfg, client: newHTTPClient()}, nil
}

type huggingFaceRequest struct {
	Inputs     string                `json:"inputs"`
	Parameters huggingFaceParameters `json:"parameters"`
}

type huggingFaceParameters struct {
	Temperature float64 `json:"temperature"`
	MaxLength   int     `json:"max_length"`
}

type huggingFaceGeneration struct {
	GeneratedText *string `json:"generated_text"`
}

func (p *HuggingFaceProvider) GenerateResponse(ctx context.Context, system, prompt string, temperature float64) (*Response, error) {
	start := time.Now()

	endpoint := p.cfg.Endpoint
	if endpoint == "" {
		endpoint = huggingFaceEndpoint + p.cfg.Model
	}

	req := huggingFaceRequest{
		Inputs: system + "\n" + prompt,
		Parameters: huggingFaceParameters{
			Temperature: temperature,
			MaxLength:   intOption(p.cfg.Options, "max_tokens", huggingFaceDefaultMaxLength),
		},
	}
	body, err := postJSON(ctx, p.client, p.ProviderName(), p.cfg.Model, endpoint, req, map[string]string{
		"Authorization": "Bearer " + p.cfg.APIKey,
	})
	if err != nil {
		return nil, err
	}

	content, err := p.parse(body)
	if err != nil {
		return nil, err
	}
	return &Response{
		Content:  content,
		Model:    p.cfg.Model,
		Duration: time.Since(start),
	}, nil
}

// parse accepts both shapes the inference API returns: a list of
// generations or a single generation object.
func (p *HuggingFaceProvider) parse(body []byte) (string, error) {
	var gen huggingFaceGeneration
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		var list []huggingFaceGeneration
		if err := decode(p.ProviderName(), body, &list); err != nil {
			return "", err
		}
		if len(list) > 0 {
			gen = list[0]
		}
	} else if err := decode(p.ProviderName(), body, &gen); err != nil {
		return "", err
	}

	if gen.GeneratedText == nil {
		return "", contentError(p.ProviderName())
	}
	return *gen.GeneratedText, nil
}

func (p *HuggingFaceProvider) ModelName() string    { return p.cfg.Model }
func (p *HuggingFaceProvider) ProviderName() string { return "HuggingFace" }
