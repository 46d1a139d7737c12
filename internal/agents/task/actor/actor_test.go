package actor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-llamaclick/internal/agents"
	"go-llamaclick/pkg/llm"
	"go-llamaclick/pkg/messages"
	"go-llamaclick/pkg/models"
)

type echoProvider struct{ answer string }

func (p echoProvider) GenerateResponse(context.Context, string, string, float64) (*llm.Response, error) {
	return &llm.Response{Content: p.answer}, nil
}
func (p echoProvider) ModelName() string    { return "echo" }
func (p echoProvider) ProviderName() string { return "Echo" }

func factory(answers map[agents.Type]string) ManagerFactory {
	return func(opts ...agents.Option) (*agents.Manager, error) {
		m := agents.NewManager(opts...)
		for typ, answer := range answers {
			a, err := agents.New(agents.NewConfig(typ), echoProvider{answer: answer})
			if err != nil {
				return nil, err
			}
			m.Add(a)
		}
		return m, nil
	}
}

func runTask(t *testing.T, build ManagerFactory) models.Status {
	t.Helper()
	root := actor.NewActorSystem().Root
	pid := root.Spawn(actor.PropsFromProducer(New(root, build)))
	t.Cleanup(func() { root.Stop(pid) })

	id := uuid.New()
	root.Send(pid, messages.NewObjective{RequestID: id, Objective: "Find the contact page"})

	var status models.Status
	require.Eventually(t, func() bool {
		res, err := root.RequestFuture(pid, messages.GetStatus{}, time.Second).Result()
		if err != nil {
			return false
		}
		status = res.(models.Status)
		return status.State.Terminal()
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, id.String(), status.ID)
	assert.Equal(t, "Find the contact page", status.Objective)
	assert.NotNil(t, status.Finished)
	return status
}

func TestTaskRunsPipeline(t *testing.T) {
	status := runTask(t, factory(map[agents.Type]string{
		agents.Planner:    "plan",
		agents.Navigator:  "nav",
		agents.Interactor: "clicked",
		agents.Verifier:   "Verification failed",
		agents.Recovery:   "recovered",
	}))

	assert.Equal(t, models.Done, status.State)
	assert.Equal(t, "recovered", status.Result)
	assert.True(t, status.Recovered)
	assert.Nil(t, status.Errs)
	assert.Len(t, status.Histories["Recovery"], 1)
}

func TestTaskReportsMissingAgent(t *testing.T) {
	status := runTask(t, factory(map[agents.Type]string{
		agents.Planner: "plan",
	}))

	assert.Equal(t, models.Failed, status.State)
	require.NotNil(t, status.Errs)
	assert.Equal(t, "Navigator agent not found", status.Errs.Message)
	assert.Equal(t, models.Navigating, status.Errs.Stage)
	assert.Empty(t, status.Result)
}

func TestTaskReportsFactoryError(t *testing.T) {
	status := runTask(t, func(...agents.Option) (*agents.Manager, error) {
		return nil, errors.New("no provider configured")
	})

	assert.Equal(t, models.Failed, status.State)
	require.NotNil(t, status.Errs)
	assert.Equal(t, "no provider configured", status.Errs.Message)
}
