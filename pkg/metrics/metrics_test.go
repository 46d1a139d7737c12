package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveStage(t *testing.T) {
	before := testutil.ToFloat64(stageRuns.WithLabelValues("verifying", OutcomeError))
	ObserveStage("verifying", errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(stageRuns.WithLabelValues("verifying", OutcomeError)))
}

func TestObserveProviderRequest(t *testing.T) {
	before := testutil.ToFloat64(providerRequests.WithLabelValues("Test", OutcomeSuccess))
	ObserveProviderRequest("Test", 150*time.Millisecond, nil)
	assert.Equal(t, before+1, testutil.ToFloat64(providerRequests.WithLabelValues("Test", OutcomeSuccess)))
}

func TestObserveTask(t *testing.T) {
	before := testutil.ToFloat64(tasks.WithLabelValues(OutcomeSuccess, "true"))
	ObserveTask(true, nil)
	assert.Equal(t, before+1, testutil.ToFloat64(tasks.WithLabelValues(OutcomeSuccess, "true")))
}
