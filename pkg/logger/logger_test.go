package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGlobalJSON(t *testing.T) {
	prev, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	require.NoError(t, newGlobal("warn", false, &buf))

	log.Info().Msg("dropped")
	log.Warn().Str(AgentNameField, "Planner").Msg("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "Planner", line["agent"])
	assert.Contains(t, line, "time")
}

func TestNewGlobalBadLevel(t *testing.T) {
	assert.Error(t, NewGlobal("chatty", true))
}
