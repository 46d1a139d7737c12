package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"go-llamaclick/pkg/logger"
	"go-llamaclick/pkg/memory/buffer"
	"go-llamaclick/pkg/metrics"
	"go-llamaclick/pkg/models"
	"go-llamaclick/pkg/tracer"
)

// ErrAgentNotFound is returned when the pipeline reaches a stage whose role
// has no registered Agent.
var ErrAgentNotFound = errors.New("agent not found")

// failureMarkers flag a verification answer as failed.
var failureMarkers = []string{"failed", "unsuccessful"}

// StageObserver is told about every pipeline state transition.
type StageObserver func(models.State)

type Option func(*Manager)

func WithStageObserver(fn StageObserver) Option {
	return func(m *Manager) { m.observer = fn }
}

// Manager owns one Agent per role and runs the fixed pipeline over them.
type Manager struct {
	mu       sync.RWMutex
	agents   map[Type]*Agent
	observer StageObserver
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{agents: make(map[Type]*Agent)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add registers agent under its role, replacing any previous one.
func (m *Manager) Add(agent *Agent) {
	m.mu.Lock()
	m.agents[agent.Type()] = agent
	m.mu.Unlock()
}

func (m *Manager) Get(t Type) (*Agent, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.agents[t]
	return a, ok
}

func (m *Manager) ClearAllHistory() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.agents {
		a.ClearHistory()
	}
}

// Histories returns a copy of every registered agent's history keyed by role name.
func (m *Manager) Histories() map[string][]buffer.Memory {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]buffer.Memory, len(m.agents))
	for t, a := range m.agents {
		out[t.String()] = a.History()
	}
	return out
}

// Result holds every stage output of one successful pipeline run.
type Result struct {
	Plan         string
	Navigation   string
	Interaction  string
	Verification string
	// Output is the recovery answer when recovery ran, the verification otherwise.
	Output    string
	Recovered bool
}

// ExecuteTask runs the pipeline for objective and returns the final text.
func (m *Manager) ExecuteTask(ctx context.Context, objective string) (string, error) {
	res, err := m.Execute(ctx, objective)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// Execute runs Planner, Navigator, Interactor and Verifier in order, then
// Recovery on the interaction result if the verification reports a failure.
// The first error aborts the run and is returned as is.
func (m *Manager) Execute(ctx context.Context, objective string) (res *Result, err error) {
	defer func() {
		if err != nil {
			m.notify(models.Failed)
		}
		metrics.ObserveTask(res != nil && res.Recovered, err)
	}()

	r := &Result{}
	if r.Plan, err = m.stage(ctx, models.Planning, Planner, objective); err != nil {
		return nil, err
	}
	if r.Navigation, err = m.stage(ctx, models.Navigating, Navigator, r.Plan); err != nil {
		return nil, err
	}
	if r.Interaction, err = m.stage(ctx, models.Interacting, Interactor, r.Navigation); err != nil {
		return nil, err
	}
	if r.Verification, err = m.stage(ctx, models.Verifying, Verifier, r.Interaction); err != nil {
		return nil, err
	}

	r.Output = r.Verification
	if VerificationFailed(r.Verification) {
		if r.Output, err = m.stage(ctx, models.Recovering, Recovery, r.Interaction); err != nil {
			return nil, err
		}
		r.Recovered = true
	}

	m.notify(models.Done)
	log.Info().Bool("recovered", r.Recovered).Msg("task complete")
	return r, nil
}

func (m *Manager) stage(ctx context.Context, state models.State, t Type, input string) (out string, err error) {
	m.notify(state)
	l := log.With().Str(logger.StageField, string(state)).Str(logger.AgentNameField, t.String()).Logger()

	agent, ok := m.Get(t)
	if !ok {
		l.Error().Msg("no agent registered for stage")
		return "", fmt.Errorf("%s %w", t, ErrAgentNotFound)
	}

	ctx, span := tracer.StartSpan(ctx, "agent.stage",
		tracer.String("agent.type", t.String()),
		tracer.String("agent.stage", string(state)),
	)
	defer func() {
		metrics.ObserveStage(string(state), err)
		tracer.End(span, err)
	}()

	l.Info().Msg("running stage")
	out, err = agent.Run(ctx, input)
	if err != nil {
		l.Error().Err(err).Msg("stage failed")
		return "", err
	}
	return out, nil
}

func (m *Manager) notify(s models.State) {
	if m.observer != nil {
		m.observer(s)
	}
}

// VerificationFailed reports whether a verifier answer asks for recovery: a
// case-insensitive match of "failed" or "unsuccessful" anywhere in the text.
func VerificationFailed(verification string) bool {
	v := strings.ToLower(verification)
	for _, marker := range failureMarkers {
		if strings.Contains(v, marker) {
			return true
		}
	}
	return false
}
