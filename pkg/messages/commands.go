package messages

import (
	"github.com/google/uuid"

	"go-llamaclick/pkg/memory/buffer"
	"go-llamaclick/pkg/models"
)

// NewObjective starts the pipeline for a task.
type NewObjective struct {
	RequestID uuid.UUID
	Objective string
}

// StageChanged is sent by the running pipeline on every transition.
type StageChanged struct {
	State models.State
}

// TaskFinished carries the pipeline outcome back into the actor.
type TaskFinished struct {
	Result    string
	Recovered bool
	Histories map[string][]buffer.Memory
	Err       error
	Stage     models.State
}

type GetStatus struct{}
