package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	AgentNameField = "agent"
	StageField     = "stage"
	ProviderField  = "provider"
	ModelField     = "model"
	ActorIDField   = "actor"
	RequestTaskID  = "task"
	AttemptField   = "attempt"
)

// NewGlobal configures the global zerolog logger. pretty switches to the
// human readable console writer on stderr.
func NewGlobal(level string, pretty bool) error {
	return newGlobal(level, pretty, os.Stderr)
}

func newGlobal(level string, pretty bool, out io.Writer) error {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}

	zerolog.SetGlobalLevel(l)

	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: out})
	} else {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	}
	return nil
}
