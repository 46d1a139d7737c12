package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-llamaclick/pkg/metrics"
	"go-llamaclick/pkg/tracer"
)

// maxResponseBody caps how much of a provider response is read.
const maxResponseBody = 10 * 1024 * 1024

const (
	defaultConnTimeout = 30 * time.Second
	defaultRespTimeout = 120 * time.Second
)

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   defaultConnTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: defaultRespTimeout,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       120 * time.Second,
			ForceAttemptHTTP2:     true,
		},
		Timeout: defaultConnTimeout + defaultRespTimeout,
	}
}

// postJSON sends payload to url and returns the raw response body of a 2xx
// answer. Non-2xx answers become a *statusError, transport failures ErrNetwork.
func postJSON(ctx context.Context, client *http.Client, provider, model, url string, payload any, headers map[string]string) (body []byte, err error) {
	ctx, span := tracer.StartSpan(ctx, "llm.generate",
		tracer.String("llm.provider", provider),
		tracer.String("llm.model", model),
	)
	start := time.Now()
	defer func() {
		metrics.ObserveProviderRequest(provider, time.Since(start), err)
		tracer.End(span, err)
	}()

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrConfiguration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s request: %w", ErrNetwork, provider, err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %w", ErrNetwork, provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{
			provider: provider,
			status:   resp.StatusCode,
			body:     strings.TrimSpace(string(body)),
		}
	}
	return body, nil
}

func decode(provider string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: unmarshal %s response: %v", ErrLLM, provider, err)
	}
	return nil
}

// intOption reads a positive integer option, falling back to def.
func intOption(opts map[string]string, key string, def int) int {
	v, ok := opts[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// chatMessage is the role/content pair shared by OpenAI, Azure and Ollama.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func chatMessages(system, prompt string) []chatMessage {
	return []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}
}
