package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupNoop(t *testing.T) {
	shutdown, err := Setup(false, "stdout")
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "agent.stage", String("agent.type", "Planner"), Int("attempt", 1))
	End(span, errors.New("boom"))
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupStdout(t *testing.T) {
	shutdown, err := Setup(true, "stdout")
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = Setup(false, "") })

	_, span := StartSpan(context.Background(), "llm.generate")
	assert.True(t, span.SpanContext().IsValid())
	End(span, nil)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupUnsupportedExporter(t *testing.T) {
	_, err := Setup(true, "jaeger")
	assert.Error(t, err)
}
