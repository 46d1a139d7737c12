package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-llamaclick/internal/agents"
	"go-llamaclick/pkg/llm"
	"go-llamaclick/pkg/models"
)

type cannedProvider struct{ answer string }

func (p cannedProvider) GenerateResponse(context.Context, string, string, float64) (*llm.Response, error) {
	return &llm.Response{Content: p.answer}, nil
}
func (p cannedProvider) ModelName() string    { return "canned" }
func (p cannedProvider) ProviderName() string { return "Canned" }

func buildManager(opts ...agents.Option) (*agents.Manager, error) {
	m := agents.NewManager(opts...)
	for _, typ := range agents.Types {
		a, err := agents.New(agents.NewConfig(typ), cannedProvider{answer: typ.String() + " ok"})
		if err != nil {
			return nil, err
		}
		m.Add(a)
	}
	return m, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	root := actor.NewActorSystem().Root
	s := New(root, buildManager, ":0")
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateAndPollTask(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/new", "application/json", strings.NewReader(`{"objective": "Find the contact page"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var created newTask
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	_, err = uuid.Parse(created.ID)
	require.NoError(t, err)

	var status getStatus
	require.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/status/" + created.ID)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			return false
		}
		return status.Status.State.Terminal()
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, models.Done, status.Status.State)
	assert.Equal(t, "Verifier ok", status.Status.Result)
	assert.False(t, status.Status.Recovered)
	assert.Equal(t, "Find the contact page", status.Status.Objective)
	assert.Len(t, status.Status.Histories["Planner"], 1)
}

func TestCreateRejectsBadBody(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{`not json`, `{"objective": "  "}`} {
		resp, err := http.Post(srv.URL+"/new", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestStatusErrors(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/status/not-a-uuid")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/status/" + uuid.NewString())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}
