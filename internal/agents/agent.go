package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go-llamaclick/pkg/llm"
	"go-llamaclick/pkg/logger"
	"go-llamaclick/pkg/memory/buffer"
	"go-llamaclick/pkg/prompts"
	"go-llamaclick/pkg/template"
)

// Type is the role an Agent plays in the pipeline.
type Type int

const (
	Planner Type = iota
	Navigator
	Interactor
	Verifier
	Recovery
)

// Types lists every role in pipeline order.
var Types = []Type{Planner, Navigator, Interactor, Verifier, Recovery}

func (t Type) String() string {
	switch t {
	case Planner:
		return "Planner"
	case Navigator:
		return "Navigator"
	case Interactor:
		return "Interactor"
	case Verifier:
		return "Verifier"
	case Recovery:
		return "Recovery"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown agent type %q", s)
}

// Placeholder is the template variable the role substitutes its input into.
func (t Type) Placeholder() string {
	switch t {
	case Interactor:
		return prompts.InteractionVar
	case Verifier:
		return prompts.ActionVar
	case Recovery:
		return prompts.FailedActionVar
	}
	return prompts.ObjectiveVar
}

// Config is immutable; the With* builders return modified copies.
type Config struct {
	Type           Type
	PromptTemplate string
	SystemMessage  string
	Temperature    float64
	Parameters     map[string]string
}

// NewConfig returns the role's default prompt, system message and temperature.
func NewConfig(t Type) Config {
	cfg := Config{
		Type:        t,
		Temperature: prompts.DefaultTemperature,
		Parameters:  map[string]string{},
	}
	switch t {
	case Planner:
		cfg.SystemMessage, cfg.PromptTemplate = prompts.PlannerSystem, prompts.PlannerPrompt
	case Navigator:
		cfg.SystemMessage, cfg.PromptTemplate = prompts.NavigatorSystem, prompts.NavigatorPrompt
	case Interactor:
		cfg.SystemMessage, cfg.PromptTemplate = prompts.InteractorSystem, prompts.InteractorPrompt
	case Verifier:
		cfg.SystemMessage, cfg.PromptTemplate = prompts.VerifierSystem, prompts.VerifierPrompt
	case Recovery:
		cfg.SystemMessage, cfg.PromptTemplate = prompts.RecoverySystem, prompts.RecoveryPrompt
	}
	return cfg
}

func (c Config) WithPromptTemplate(tmpl string) Config {
	c.PromptTemplate = tmpl
	return c
}

func (c Config) WithSystemMessage(msg string) Config {
	c.SystemMessage = msg
	return c
}

func (c Config) WithTemperature(temp float64) Config {
	c.Temperature = temp
	return c
}

func (c Config) WithParameter(key, value string) Config {
	params := make(map[string]string, len(c.Parameters)+1)
	for k, v := range c.Parameters {
		params[k] = v
	}
	params[key] = value
	c.Parameters = params
	return c
}

// Validate rejects temperatures outside [0, 2] and templates that would not
// substitute the role's input.
func (c Config) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%s: temperature %v out of range [0, 2]", c.Type, c.Temperature)
	}
	vars := make([]string, 0, len(c.Parameters))
	for k := range c.Parameters {
		vars = append(vars, k)
	}
	if err := template.Validate(c.PromptTemplate, c.Type.Placeholder(), vars...); err != nil {
		return fmt.Errorf("%s: %w", c.Type, err)
	}
	return nil
}

// Agent binds one provider to a role configuration and records every
// successful exchange.
type Agent struct {
	cfg      Config
	provider llm.Provider
	history  buffer.Memories
	l        zerolog.Logger
}

// New takes ownership of provider; it must not be shared with another Agent.
func New(cfg Config, provider llm.Provider) (*Agent, error) {
	if provider == nil {
		return nil, errors.New("agent requires a provider")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return &Agent{
		cfg:      cfg,
		provider: provider,
		l: log.With().Fields(map[string]interface{}{
			logger.AgentNameField: cfg.Type.String(),
			logger.ProviderField:  provider.ProviderName(),
			logger.ModelField:     provider.ModelName(),
		}).Logger(),
	}, nil
}

// Run renders the prompt for input, asks the provider and returns its answer.
// Provider errors are returned unchanged and leave the history untouched.
func (a *Agent) Run(ctx context.Context, input string) (string, error) {
	values := make(map[string]any, len(a.cfg.Parameters)+1)
	for k, v := range a.cfg.Parameters {
		values[k] = v
	}
	values[a.cfg.Type.Placeholder()] = input

	prompt, err := template.Render(a.cfg.PromptTemplate, values)
	if err != nil {
		return "", fmt.Errorf("%s prompt: %w", a.cfg.Type, err)
	}

	a.l.Debug().Msg("calling provider")
	resp, err := a.provider.GenerateResponse(ctx, a.cfg.SystemMessage, prompt, a.cfg.Temperature)
	if err != nil {
		a.l.Debug().Err(err).Msg("provider call failed")
		return "", err
	}

	a.history.Add(buffer.Memory{Question: prompt, Answer: resp.Content})
	ev := a.l.Debug().Dur("duration", resp.Duration)
	if resp.TokenUsage != nil {
		ev = ev.Int("tokens", resp.TokenUsage.TotalTokens)
	}
	ev.Msg("provider answered")
	return resp.Content, nil
}

func (a *Agent) History() []buffer.Memory { return a.history.Items() }

func (a *Agent) ClearHistory() { a.history.Clear() }

func (a *Agent) Type() Type { return a.cfg.Type }

func (a *Agent) Config() Config { return a.cfg }

// Provider returns the provider the agent owns.
func (a *Agent) Provider() llm.Provider { return a.provider }
