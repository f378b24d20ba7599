package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/ventsim/internal/eventlog"
	"codeberg.org/mutker/ventsim/internal/fan"
	"codeberg.org/mutker/ventsim/internal/metrics"
	"codeberg.org/mutker/ventsim/internal/simulator"
	"codeberg.org/mutker/ventsim/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFans []simulator.FanStatus

func (s staticFans) Fans() []simulator.FanStatus { return s }

func testFans() staticFans {
	return staticFans{
		{State: fan.State{ID: "fan-1-1", On: true, Speed: 2000}, Site: "hall", Threshold: 25, ViewOpen: true},
		{State: fan.State{ID: "fan-1-2", On: false, Speed: 1500}, Site: "hall", Threshold: 27.5},
	}
}

func TestCollectorMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.NewService(metrics.DefaultConfig(), testFans(), reg)
	require.NoError(t, err)
	assert.True(t, c.Enabled())

	c.ObserveReading(simulator.Reading{
		Site:   "hall",
		FanID:  "fan-1-1",
		Sample: telemetry.Sample{Time: time.Now(), Temperature: 24.7, Speed: 2000, Power: 80.2},
	})
	c.ObserveReading(simulator.Reading{
		Site:   "hall",
		FanID:  "fan-1-1",
		Sample: telemetry.Sample{Time: time.Now(), Temperature: 24.9, Speed: 2000, Power: 80.4},
	})
	c.ObserveEvent(eventlog.Entry{Kind: eventlog.KindAction})
	c.ObserveEvent(eventlog.Entry{Kind: eventlog.KindThresholdExceeded})
	c.ObserveEvent(eventlog.Entry{Kind: eventlog.KindAction})

	expected := `
# HELP ventsim_events_total Event log entries by kind.
# TYPE ventsim_events_total counter
ventsim_events_total{kind="action"} 2
ventsim_events_total{kind="threshold_exceeded"} 1
# HELP ventsim_fan_temperature_celsius Latest simulated temperature of a fan with an open view.
# TYPE ventsim_fan_temperature_celsius gauge
ventsim_fan_temperature_celsius{fan="fan-1-1",site="hall"} 24.9
# HELP ventsim_ticks_total Simulation ticks per fan.
# TYPE ventsim_ticks_total counter
ventsim_ticks_total{fan="fan-1-1",site="hall"} 2
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"ventsim_events_total", "ventsim_fan_temperature_celsius", "ventsim_ticks_total")
	assert.NoError(t, err)
}

func TestFanStateMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.NewService(metrics.DefaultConfig(), testFans(), reg)
	require.NoError(t, err)

	expected := `
# HELP ventsim_fan_on Whether the fan is switched on.
# TYPE ventsim_fan_on gauge
ventsim_fan_on{fan="fan-1-1",site="hall"} 1
ventsim_fan_on{fan="fan-1-2",site="hall"} 0
# HELP ventsim_fan_threshold_celsius Temperature threshold of the fan.
# TYPE ventsim_fan_threshold_celsius gauge
ventsim_fan_threshold_celsius{fan="fan-1-1",site="hall"} 25
ventsim_fan_threshold_celsius{fan="fan-1-2",site="hall"} 27.5
# HELP ventsim_open_views Fan detail views currently simulating.
# TYPE ventsim_open_views gauge
ventsim_open_views 1
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"ventsim_fan_on", "ventsim_fan_threshold_celsius", "ventsim_open_views")
	assert.NoError(t, err)
}

func TestHandler(t *testing.T) {
	c, err := metrics.NewService(metrics.DefaultConfig(), testFans(), nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ventsim_fan_speed_rpm{fan="fan-1-2",site="hall"} 1500`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestDisabled(t *testing.T) {
	cfg := metrics.DefaultConfig()
	cfg.Enabled = false

	c, err := metrics.NewService(cfg, nil, nil)
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	c.ObserveEvent(eventlog.Entry{Kind: eventlog.KindAction})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.NewService(metrics.DefaultConfig(), testFans(), reg)
	require.NoError(t, err)

	_, err = metrics.NewService(metrics.DefaultConfig(), testFans(), reg)
	assert.Error(t, err)
}
