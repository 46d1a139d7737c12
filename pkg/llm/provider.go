package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Response is a single answer produced by a Provider.
type Response struct {
	Content  string        `json:"content"`
	Model    string        `json:"model"`
	Duration time.Duration `json:"duration"`
	// TokenUsage is nil when the provider does not report usage.
	TokenUsage *TokenUsage `json:"token_usage,omitempty"`
}

type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Provider is the uniform capability every LLM backend implements.
type Provider interface {
	GenerateResponse(ctx context.Context, system, prompt string, temperature float64) (*Response, error)
	ModelName() string
	ProviderName() string
}

type ProviderType string

const (
	OpenAI      ProviderType = "openai"
	Anthropic   ProviderType = "anthropic"
	Local       ProviderType = "local"
	HuggingFace ProviderType = "huggingface"
	AzureOpenAI ProviderType = "azure_openai"
)

// ParseProviderType accepts the canonical names plus the aliases used in settings files.
func ParseProviderType(s string) (ProviderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openai":
		return OpenAI, nil
	case "anthropic", "claude":
		return Anthropic, nil
	case "local", "ollama":
		return Local, nil
	case "huggingface", "hf":
		return HuggingFace, nil
	case "azure_openai", "azure", "azureopenai":
		return AzureOpenAI, nil
	}
	return "", fmt.Errorf("%w: unknown provider type %q", ErrConfiguration, s)
}

// ProviderConfig describes how to build one Provider. It is validated when
// the provider is constructed, not when the config is built.
type ProviderConfig struct {
	Type     ProviderType      `json:"type" yaml:"type"`
	Model    string            `json:"model" yaml:"model"`
	APIKey   string            `json:"-" yaml:"api_key"`
	Endpoint string            `json:"endpoint,omitempty" yaml:"endpoint"`
	Options  map[string]string `json:"options,omitempty" yaml:"options"`

	// Timeout bounds a single attempt. RetryAttempts is the total number of
	// attempts, RetryDelay the first backoff interval.
	Timeout       time.Duration `json:"timeout,omitempty" yaml:"timeout"`
	RetryAttempts int           `json:"retry_attempts,omitempty" yaml:"retry_attempts"`
	RetryDelay    time.Duration `json:"retry_delay,omitempty" yaml:"retry_delay"`
}

func NewProviderConfig(t ProviderType, model, apiKey string) ProviderConfig {
	return ProviderConfig{
		Type:    t,
		Model:   model,
		APIKey:  apiKey,
		Options: map[string]string{},
	}
}

func (c ProviderConfig) WithEndpoint(endpoint string) ProviderConfig {
	c.Endpoint = endpoint
	return c
}

func (c ProviderConfig) WithOption(key, value string) ProviderConfig {
	opts := make(map[string]string, len(c.Options)+1)
	for k, v := range c.Options {
		opts[k] = v
	}
	opts[key] = value
	c.Options = opts
	return c
}

// NewProvider builds the adapter matching cfg.Type and wraps it with the
// timeout, retry and circuit breaker layer. It performs no network I/O.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch cfg.Type {
	case OpenAI:
		p, err = NewOpenAIProvider(cfg)
	case Anthropic:
		p, err = NewAnthropicProvider(cfg)
	case Local:
		p, err = NewLocalProvider(cfg)
	case HuggingFace:
		p, err = NewHuggingFaceProvider(cfg)
	case AzureOpenAI:
		p, err = NewAzureOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown provider type %q", ErrConfiguration, cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	return NewResilientProvider(p, ResilienceConfig{
		Timeout:       cfg.Timeout,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
	}), nil
}
