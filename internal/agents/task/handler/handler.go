package handler

import (
	"context"

	"go-llamaclick/internal/agents"
	"go-llamaclick/pkg/memory/buffer"
	"go-llamaclick/pkg/messages"
)

type Handler struct {
	manager *agents.Manager
}

func New(manager *agents.Manager) *Handler {
	return &Handler{
		manager: manager,
	}
}

// Execute runs the whole pipeline for objective and packs the outcome as a
// message for the owning actor.
func (h *Handler) Execute(ctx context.Context, objective string) messages.TaskFinished {
	res, err := h.manager.Execute(ctx, objective)
	if err != nil {
		return messages.TaskFinished{Err: err, Histories: h.Histories()}
	}
	return messages.TaskFinished{
		Result:    res.Output,
		Recovered: res.Recovered,
		Histories: h.Histories(),
	}
}

func (h *Handler) Histories() map[string][]buffer.Memory {
	return h.manager.Histories()
}
