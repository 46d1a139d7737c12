package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	out, err := Render("Break down: {objective} for {user}", map[string]any{
		"objective": "book a flight",
		"user":      "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "Break down: book a flight for alice", out)
}

func TestRenderEscapedBraces(t *testing.T) {
	out, err := Render(`Answer as {{"steps": []}} for {objective}`, map[string]any{"objective": "x"})
	require.NoError(t, err)
	assert.Equal(t, `Answer as {"steps": []} for x`, out)
}

func TestRenderMissingValue(t *testing.T) {
	_, err := Render("{objective} {missing}", map[string]any{"objective": "x"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		vars    []string
		wantErr bool
	}{
		{name: "placeholder only", text: "Do {objective}"},
		{name: "with parameter", text: "Do {objective} on {site}", vars: []string{"site"}},
		{name: "missing placeholder", text: "Do something", wantErr: true},
		{name: "unknown placeholder", text: "Do {objective} on {site}", wantErr: true},
		{name: "escaped placeholder", text: "Do {{objective}}", wantErr: true},
		{name: "escaped and real placeholder", text: "Replace {{objective}} with {objective}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.text, "objective", tt.vars...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
