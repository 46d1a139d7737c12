package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"go-llamaclick/internal/agents"
	"go-llamaclick/pkg/memory/buffer"
)

func TestRenderResult(t *testing.T) {
	out := renderResult(&agents.Result{Output: "contact page loaded"})
	assert.Contains(t, out, "contact page loaded")
	assert.NotContains(t, out, "recovered")

	out = renderResult(&agents.Result{Output: "scrolled and retried", Recovered: true})
	assert.Contains(t, out, "recovered")
}

func TestRenderHistoriesPipelineOrder(t *testing.T) {
	out := renderHistories(map[string][]buffer.Memory{
		"Verifier": {{Question: "verify it", Answer: "fine"}},
		"Planner":  {{Question: "plan it", Answer: "steps"}},
		"Recovery": nil,
	})

	assert.Less(t, strings.Index(out, "plan it"), strings.Index(out, "verify it"))
	assert.NotContains(t, out, "Recovery")
}
