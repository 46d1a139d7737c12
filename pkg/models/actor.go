package models

import (
	"time"

	"go-llamaclick/pkg/memory/buffer"
)

// Status is the snapshot of one task reported to API callers.
type Status struct {
	ID        string                     `json:"id"`
	Objective string                     `json:"objective"`
	State     State                      `json:"state"`
	Result    string                     `json:"result,omitempty"`
	Recovered bool                       `json:"recovered"`
	Histories map[string][]buffer.Memory `json:"histories,omitempty"`
	Errs      *Error                     `json:"error,omitempty"`
	Started   time.Time                  `json:"started"`
	Finished  *time.Time                 `json:"finished,omitempty"`
}

type Error struct {
	Message string     `json:"message"`
	Stage   State      `json:"stage,omitempty"`
	Time    *time.Time `json:"time,omitempty"`
}
