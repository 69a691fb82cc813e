package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rewarder/events"

	"github.com/go-chi/chi/v5"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gather returns the summed value of a counter family filtered by labels
func gather(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := Registry.Gather()
	require.NoError(t, err)

	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if !matchLabels(metric, labels) {
				continue
			}
			switch {
			case metric.GetCounter() != nil:
				total += metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				total += float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return total
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	for key, want := range labels {
		found := false
		for _, pair := range metric.GetLabel() {
			if pair.GetName() == key && pair.GetValue() == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func TestRegister_CountsEvents(t *testing.T) {
	bus := events.NewBus()
	Register(bus)

	requestedBefore := gather(t, "rewarder_rewards_requested_total", nil)
	executedBefore := gather(t, "rewarder_rewards_executed_total", nil)
	coinsBefore := gather(t, "rewarder_rewards_coins_awarded_total", nil)

	bus.Emit(context.Background(), events.RewardRequestedEvent{RewardID: 1, Amount: 10})
	bus.Emit(context.Background(), events.RewardExecutedEvent{RewardID: 1, Amount: 10, NewBalance: 10})
	bus.Emit(context.Background(), events.RewardExecutedEvent{RewardID: 2, Amount: 25, NewBalance: 35})

	assert.Eventually(t, func() bool {
		return gather(t, "rewarder_rewards_executed_total", nil)-executedBefore == 2
	}, time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return gather(t, "rewarder_rewards_requested_total", nil)-requestedBefore == 1
	}, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return gather(t, "rewarder_rewards_coins_awarded_total", nil)-coinsBefore == 35
	}, time.Second, 10*time.Millisecond)
}

func TestRecordRewardPass(t *testing.T) {
	okBefore := gather(t, "rewarder_rewards_passes_total", map[string]string{"success": "true"})
	failBefore := gather(t, "rewarder_rewards_passes_total", map[string]string{"success": "false"})

	RecordRewardPass(20*time.Millisecond, nil)
	RecordRewardPass(0, errors.New("db down"))

	assert.Equal(t, float64(1), gather(t, "rewarder_rewards_passes_total", map[string]string{"success": "true"})-okBefore)
	assert.Equal(t, float64(1), gather(t, "rewarder_rewards_passes_total", map[string]string{"success": "false"})-failBefore)
}

func TestInstrumentHandler_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Get("/api/rewards/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	labels := map[string]string{"method": "GET", "route": "/api/rewards/{id}", "status": "418"}
	before := gather(t, "rewarder_http_requests_total", labels)

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rewards/"+id, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Equal(t, float64(3), gather(t, "rewarder_http_requests_total", labels)-before)
}

func TestHandler_ExposesRegistry(t *testing.T) {
	RecordRewardPass(time.Millisecond, nil)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "rewarder_rewards_passes_total"))
}
