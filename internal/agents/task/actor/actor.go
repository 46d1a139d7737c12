package actor

import (
	"context"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/rs/zerolog/log"

	"go-llamaclick/internal/agents"
	"go-llamaclick/internal/agents/task/handler"
	"go-llamaclick/pkg/logger"
	"go-llamaclick/pkg/messages"
	"go-llamaclick/pkg/models"
)

// ManagerFactory builds a fresh, fully registered Manager for one task.
type ManagerFactory func(opts ...agents.Option) (*agents.Manager, error)

// Task owns the pipeline of a single objective. The pipeline runs on its own
// goroutine and reports back through the actor's mailbox.
type Task struct {
	root    *actor.RootContext
	build   ManagerFactory
	handler *handler.Handler
	cancel  context.CancelFunc
	status  models.Status
	stage   models.State
}

func New(root *actor.RootContext, build ManagerFactory) actor.Producer {
	return func() actor.Actor {
		return &Task{
			root:   root,
			build:  build,
			status: models.Status{State: models.Init},
		}
	}
}

func (agent *Task) Receive(ac actor.Context) {
	l := log.With().Fields(map[string]interface{}{logger.ActorIDField: ac.Self().GetId(), logger.AgentNameField: "task"}).Logger()
	switch msg := ac.Message().(type) {
	case *actor.Started:
		l.Debug().Msg("starting actor")
	case *actor.Stopping:
		l.Debug().Msg("stopping actor")
		if agent.cancel != nil {
			agent.cancel()
		}
	case *actor.Stopped:
		l.Debug().Msg("stopped actor")
	case *actor.Restarting:
		l.Debug().Msg("restarting actor")
	case messages.GetStatus:
		status := agent.status
		if agent.handler != nil && !status.State.Terminal() {
			status.Histories = agent.handler.Histories()
		}
		ac.Respond(status)
	case messages.NewObjective:
		l = l.With().Str(logger.RequestTaskID, msg.RequestID.String()).Logger()
		l.Debug().Msg("NewObjective received")
		agent.start(ac.Self(), msg)
	case messages.StageChanged:
		if msg.State.Terminal() {
			return
		}
		agent.stage = msg.State
		if !agent.status.State.Terminal() {
			agent.status.State = msg.State
		}
	case messages.TaskFinished:
		agent.finish(msg)
		if msg.Err != nil {
			l.Error().Err(msg.Err).Str(logger.StageField, string(agent.stage)).Msg("task failed")
			return
		}
		l.Info().Bool("recovered", msg.Recovered).Msg("task finished")
	default:
		l.Warn().Msgf("unknown message: %v", msg)
	}
}

func (agent *Task) start(self *actor.PID, msg messages.NewObjective) {
	agent.status.ID = msg.RequestID.String()
	agent.status.Objective = msg.Objective
	agent.status.Started = time.Now()

	if agent.handler != nil {
		// one objective per actor
		return
	}

	manager, err := agent.build(agents.WithStageObserver(func(s models.State) {
		agent.root.Send(self, messages.StageChanged{State: s})
	}))
	if err != nil {
		agent.finish(messages.TaskFinished{Err: err})
		return
	}
	h := handler.New(manager)
	agent.handler = h

	ctx, cancel := context.WithCancel(context.Background())
	agent.cancel = cancel
	go func() {
		defer cancel()
		agent.root.Send(self, h.Execute(ctx, msg.Objective))
	}()
}

func (agent *Task) finish(msg messages.TaskFinished) {
	now := time.Now()
	agent.status.Finished = &now
	agent.status.Histories = msg.Histories
	if msg.Err != nil {
		agent.status.State = models.Failed
		agent.status.Errs = &models.Error{Message: msg.Err.Error(), Stage: agent.stage, Time: &now}
		return
	}
	agent.status.State = models.Done
	agent.status.Result = msg.Result
	agent.status.Recovered = msg.Recovered
}
