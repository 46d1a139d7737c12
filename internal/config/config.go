package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"go-llamaclick/internal/agents"
	"go-llamaclick/internal/secrets"
	"go-llamaclick/pkg/llm"
	"go-llamaclick/pkg/prompts"
)

// KeyEnv holds the passphrase for enc: values in the settings file.
const KeyEnv = "LLAMACLICK_CONFIG_KEY"

// Settings is the top-level application configuration.
type Settings struct {
	LLM     LLMSettings              `yaml:"llm"`
	Agents  map[string]AgentSettings `yaml:"agents,omitempty"`
	Log     LogSettings              `yaml:"log"`
	Server  ServerSettings           `yaml:"server"`
	Tracing TracingSettings          `yaml:"tracing"`
}

// LLMSettings selects the provider. Provider specific keys and models win
// over the generic api_key and model when that provider is selected.
type LLMSettings struct {
	Provider          string            `yaml:"provider"`
	Model             string            `yaml:"model"`
	APIKey            string            `yaml:"api_key,omitempty"`
	AnthropicAPIKey   string            `yaml:"anthropic_api_key,omitempty"`
	HuggingFaceAPIKey string            `yaml:"huggingface_api_key,omitempty"`
	AzureAPIKey       string            `yaml:"azure_api_key,omitempty"`
	AzureEndpoint     string            `yaml:"azure_endpoint,omitempty"`
	OllamaURL         string            `yaml:"ollama_url"`
	AnthropicModel    string            `yaml:"anthropic_model"`
	OllamaModel       string            `yaml:"ollama_model"`
	Endpoint          string            `yaml:"endpoint,omitempty"`
	Timeout           time.Duration     `yaml:"timeout"`
	RetryAttempts     int               `yaml:"retry_attempts"`
	RetryDelay        time.Duration     `yaml:"retry_delay"`
	Options           map[string]string `yaml:"options,omitempty"`
}

// AgentSettings overrides one role's defaults. Unset fields keep the default.
type AgentSettings struct {
	Temperature    *float64          `yaml:"temperature,omitempty"`
	SystemMessage  string            `yaml:"system_message,omitempty"`
	PromptTemplate string            `yaml:"prompt_template,omitempty"`
	Parameters     map[string]string `yaml:"parameters,omitempty"`
}

type LogSettings struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type ServerSettings struct {
	Addr string `yaml:"addr"`
}

type TracingSettings struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // "stdout" or "noop"
}

func Defaults() *Settings {
	return &Settings{
		LLM: LLMSettings{
			Provider:       string(llm.OpenAI),
			Model:          "gpt-4",
			OllamaURL:      "http://localhost:11434",
			AnthropicModel: "claude-3-haiku-20240307",
			OllamaModel:    "llama3",
			Timeout:        llm.DefaultTimeout,
			RetryAttempts:  llm.DefaultRetryAttempts,
			RetryDelay:     llm.DefaultRetryDelay,
		},
		Log:     LogSettings{Level: "info", Pretty: true},
		Server:  ServerSettings{Addr: ":8080"},
		Tracing: TracingSettings{Exporter: "noop"},
	}
}

// Load reads a YAML settings file, applies env var overrides and decrypts
// secrets. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	s := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	ApplyEnvOverrides(s)

	if passphrase := os.Getenv(KeyEnv); passphrase != "" {
		if err := decryptSecrets(s, passphrase); err != nil {
			return nil, fmt.Errorf("decrypt secrets: %w", err)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes s to path with owner-only permissions.
func Save(s *Settings, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyEnvOverrides maps provider key variables and LLAMACLICK_* variables
// onto s.
func ApplyEnvOverrides(s *Settings) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		s.LLM.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		s.LLM.AnthropicAPIKey = v
	}
	if v := os.Getenv("HF_API_KEY"); v != "" {
		s.LLM.HuggingFaceAPIKey = v
	}
	if v := os.Getenv("AZURE_OPENAI_API_KEY"); v != "" {
		s.LLM.AzureAPIKey = v
	}
	if v := os.Getenv("LLAMACLICK_PROVIDER"); v != "" {
		s.LLM.Provider = v
	}
	if v := os.Getenv("LLAMACLICK_MODEL"); v != "" {
		s.LLM.Model = v
	}
	if v := os.Getenv("LLAMACLICK_OLLAMA_URL"); v != "" {
		s.LLM.OllamaURL = v
	}
	if v := os.Getenv("LLAMACLICK_LOG_LEVEL"); v != "" {
		s.Log.Level = v
	}
}

func decryptSecrets(s *Settings, passphrase string) error {
	fields := map[string]*string{
		"api_key":             &s.LLM.APIKey,
		"anthropic_api_key":   &s.LLM.AnthropicAPIKey,
		"huggingface_api_key": &s.LLM.HuggingFaceAPIKey,
		"azure_api_key":       &s.LLM.AzureAPIKey,
	}
	for name, field := range fields {
		v, err := secrets.Reveal(*field, passphrase)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*field = v
	}
	return nil
}

func (s *Settings) Validate() error {
	if _, err := llm.ParseProviderType(s.LLM.Provider); err != nil {
		return fmt.Errorf("llm.provider: %w", err)
	}
	if s.LLM.RetryAttempts < 0 {
		return fmt.Errorf("llm.retry_attempts must not be negative, got %d", s.LLM.RetryAttempts)
	}
	if _, err := zerolog.ParseLevel(s.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	for name := range s.Agents {
		if _, err := agents.ParseType(name); err != nil {
			return fmt.Errorf("agents: %w", err)
		}
	}
	if _, err := s.AgentConfigs(); err != nil {
		return err
	}
	return nil
}

// ProviderConfig maps the settings onto the configuration of the selected
// provider. Credentials are checked later, when the provider is built.
func (s *Settings) ProviderConfig() (llm.ProviderConfig, error) {
	t, err := llm.ParseProviderType(s.LLM.Provider)
	if err != nil {
		return llm.ProviderConfig{}, err
	}

	key, model, endpoint := s.LLM.APIKey, s.LLM.Model, ""
	switch t {
	case llm.Anthropic:
		key = firstNonEmpty(s.LLM.AnthropicAPIKey, key)
		model = firstNonEmpty(s.LLM.AnthropicModel, model)
	case llm.Local:
		model = firstNonEmpty(s.LLM.OllamaModel, model)
		endpoint = s.LLM.OllamaURL
	case llm.HuggingFace:
		key = firstNonEmpty(s.LLM.HuggingFaceAPIKey, key)
	case llm.AzureOpenAI:
		key = firstNonEmpty(s.LLM.AzureAPIKey, key)
		endpoint = s.LLM.AzureEndpoint
	}

	cfg := llm.NewProviderConfig(t, model, key).WithEndpoint(firstNonEmpty(s.LLM.Endpoint, endpoint))
	for k, v := range s.LLM.Options {
		cfg = cfg.WithOption(k, v)
	}
	cfg.Timeout = s.LLM.Timeout
	cfg.RetryAttempts = s.LLM.RetryAttempts
	cfg.RetryDelay = s.LLM.RetryDelay
	return cfg, nil
}

var roleTemperatures = map[agents.Type]float64{
	agents.Planner:    prompts.PlannerTemperature,
	agents.Navigator:  prompts.NavigatorTemperature,
	agents.Interactor: prompts.InteractorTemperature,
	agents.Verifier:   prompts.VerifierTemperature,
	agents.Recovery:   prompts.RecoveryTemperature,
}

// AgentConfigs returns one validated Config per role with the overrides applied.
func (s *Settings) AgentConfigs() (map[agents.Type]agents.Config, error) {
	out := make(map[agents.Type]agents.Config, len(agents.Types))
	for _, t := range agents.Types {
		cfg := agents.NewConfig(t).WithTemperature(roleTemperatures[t])
		if o, ok := s.agentSettings(t); ok {
			if o.Temperature != nil {
				cfg = cfg.WithTemperature(*o.Temperature)
			}
			if o.SystemMessage != "" {
				cfg = cfg.WithSystemMessage(o.SystemMessage)
			}
			if o.PromptTemplate != "" {
				cfg = cfg.WithPromptTemplate(o.PromptTemplate)
			}
			for k, v := range o.Parameters {
				cfg = cfg.WithParameter(k, v)
			}
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("agents: %w", err)
		}
		out[t] = cfg
	}
	return out, nil
}

func (s *Settings) agentSettings(t agents.Type) (AgentSettings, bool) {
	for name, o := range s.Agents {
		if strings.EqualFold(name, t.String()) {
			return o, true
		}
	}
	return AgentSettings{}, false
}

// BuildManager registers all five roles, each with its own provider instance.
func BuildManager(s *Settings, opts ...agents.Option) (*agents.Manager, error) {
	pc, err := s.ProviderConfig()
	if err != nil {
		return nil, err
	}
	cfgs, err := s.AgentConfigs()
	if err != nil {
		return nil, err
	}

	m := agents.NewManager(opts...)
	for _, t := range agents.Types {
		provider, err := llm.NewProvider(pc)
		if err != nil {
			return nil, fmt.Errorf("%s provider: %w", t, err)
		}
		a, err := agents.New(cfgs[t], provider)
		if err != nil {
			return nil, err
		}
		m.Add(a)
	}
	return m, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
