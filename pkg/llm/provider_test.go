package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderOpenAIWithoutKeyFailsWithoutNetwork(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	cfg := NewProviderConfig(OpenAI, "gpt-4", "").WithEndpoint(server.URL)
	for i := 0; i < 3; i++ {
		p, err := NewProvider(cfg)
		require.Error(t, err)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, ErrAuthentication)
	}
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestNewProviderLocalWithoutEndpoint(t *testing.T) {
	_, err := NewProvider(NewProviderConfig(Local, "llama3", ""))
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.NotErrorIs(t, err, ErrAuthentication)
}

func TestNewProviderPreconditions(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProviderConfig
		wantErr error
	}{
		{"anthropic without key", NewProviderConfig(Anthropic, "claude-3-haiku", ""), ErrAuthentication},
		{"huggingface without key", NewProviderConfig(HuggingFace, "gpt2", " "), ErrAuthentication},
		{"azure without key", NewProviderConfig(AzureOpenAI, "gpt-4", "").WithEndpoint("https://x.openai.azure.com"), ErrAuthentication},
		{"azure without endpoint", NewProviderConfig(AzureOpenAI, "gpt-4", "key"), ErrConfiguration},
		{"unknown type", NewProviderConfig("palm", "bison", "key"), ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(tt.cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewProviderDispatch(t *testing.T) {
	tests := []struct {
		cfg  ProviderConfig
		name string
	}{
		{NewProviderConfig(OpenAI, "gpt-4", "k"), "OpenAI"},
		{NewProviderConfig(Anthropic, "claude", "k"), "Anthropic"},
		{NewProviderConfig(Local, "llama3", "").WithEndpoint("http://localhost:11434"), "Local"},
		{NewProviderConfig(HuggingFace, "gpt2", "k"), "HuggingFace"},
		{NewProviderConfig(AzureOpenAI, "dep", "k").WithEndpoint("https://x.openai.azure.com"), "Azure OpenAI"},
	}
	for _, tt := range tests {
		p, err := NewProvider(tt.cfg)
		require.NoError(t, err)
		assert.Equal(t, tt.name, p.ProviderName())
		assert.Equal(t, tt.cfg.Model, p.ModelName())
		assert.IsType(t, &ResilientProvider{}, p)
	}
}

func TestParseProviderType(t *testing.T) {
	pt, err := ParseProviderType("Ollama")
	require.NoError(t, err)
	assert.Equal(t, Local, pt)

	pt, err = ParseProviderType("azure")
	require.NoError(t, err)
	assert.Equal(t, AzureOpenAI, pt)

	_, err = ParseProviderType("cohere")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestProviderConfigWithOptionCopies(t *testing.T) {
	base := NewProviderConfig(OpenAI, "gpt-4", "k")
	derived := base.WithOption("max_tokens", "64")

	assert.Empty(t, base.Options)
	assert.Equal(t, "64", derived.Options["max_tokens"])
}

func TestGenerateResponseHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	p, err := NewOpenAIProvider(NewProviderConfig(OpenAI, "gpt-4", "k").WithEndpoint(server.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.GenerateResponse(ctx, "sys", "hi", 0.5)
	assert.ErrorIs(t, err, ErrNetwork)
}
