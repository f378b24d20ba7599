package api_test

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/ventsim/internal/api"
	"codeberg.org/mutker/ventsim/internal/camera"
	"codeberg.org/mutker/ventsim/internal/dashboard"
	"codeberg.org/mutker/ventsim/internal/eventlog"
	"codeberg.org/mutker/ventsim/internal/history"
	"codeberg.org/mutker/ventsim/internal/logger"
	"codeberg.org/mutker/ventsim/internal/metrics"
	"codeberg.org/mutker/ventsim/internal/simulator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	server *api.Server
	engine *simulator.Engine
	dash   *dashboard.Dashboard
}

func newFixture(t *testing.T, deps api.Deps) *fixture {
	t.Helper()

	log := logger.New(io.Discard)
	cfg := simulator.DefaultConfig()
	cfg.Interval = time.Hour
	e, err := simulator.New(cfg, simulator.WithSeed(7), simulator.WithLogger(log))
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	d := dashboard.New(e, rand.New(rand.NewSource(7)), time.Now)
	deps.Engine = e
	deps.Dashboard = d

	return &fixture{
		server: api.New(api.Config{}, deps, log),
		engine: e,
		dash:   d,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func fanPath(id, action string) string {
	p := "/api/fans/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	assert.Equal(t, status, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, code, decodeBody[apiError](t, rec).Code)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, api.Deps{})

	rec := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody[map[string]any](t, rec)["status"])
}

func TestSites(t *testing.T) {
	f := newFixture(t, api.Deps{})

	rec := f.do(t, http.MethodGet, "/api/sites", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sites []struct {
		Index   int                   `json:"index"`
		Name    string                `json:"name"`
		Fans    []simulator.FanStatus `json:"fans"`
		Cameras []string              `json:"cameras"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sites))
	require.Len(t, sites, 2)

	assert.Equal(t, "Object 1 - Production hall", sites[0].Name)
	require.Len(t, sites[0].Fans, 3)
	assert.Equal(t, "Fan 1-1", sites[0].Fans[0].ID)
	assert.True(t, sites[0].Fans[0].On)
	assert.EqualValues(t, 2000, sites[0].Fans[0].Speed)
	assert.Equal(t, 25.0, sites[0].Fans[0].Threshold)
	assert.False(t, sites[0].Fans[1].On)
	assert.Equal(t, []string{"Camera 2-1", "Camera 2-2"}, sites[1].Cameras)
}

func TestFanActions(t *testing.T) {
	f := newFixture(t, api.Deps{})

	rec := f.do(t, http.MethodPost, fanPath("Fan 1-2", "toggle"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[simulator.FanStatus](t, rec).On)

	rec = f.do(t, http.MethodPut, fanPath("Fan 1-2", "speed"), `{"speed": 2500}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2500, decodeBody[simulator.FanStatus](t, rec).Speed)

	rec = f.do(t, http.MethodPut, fanPath("Fan 1-2", "speed"), `{"speed": 99999}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3000, decodeBody[simulator.FanStatus](t, rec).Speed, "speed is clamped")

	rec = f.do(t, http.MethodPut, fanPath("Fan 1-2", "threshold"), `{"threshold": 40}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30.0, decodeBody[simulator.FanStatus](t, rec).Threshold, "threshold is clamped")

	t.Run("switched off fan", func(t *testing.T) {
		rec := f.do(t, http.MethodPut, fanPath("Fan 2-3", "speed"), `{"speed": 2500}`)
		assertError(t, rec, http.StatusConflict, "fan_off")
	})

	t.Run("unknown fan", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, fanPath("Fan 9-9", "toggle"), "")
		assertError(t, rec, http.StatusNotFound, "simulator_unknown_fan")
	})

	t.Run("bad bodies", func(t *testing.T) {
		for _, body := range []string{`{}`, `{"speed": "fast"}`, `{"rpm": 1}`, `nope`} {
			rec := f.do(t, http.MethodPut, fanPath("Fan 1-1", "speed"), body)
			assertError(t, rec, http.StatusBadRequest, "api_bad_request")
		}
		rec := f.do(t, http.MethodPut, fanPath("Fan 1-1", "threshold"), `{}`)
		assertError(t, rec, http.StatusBadRequest, "api_bad_request")
	})
}

func TestFanModal(t *testing.T) {
	f := newFixture(t, api.Deps{})

	rec := f.do(t, http.MethodPost, fanPath("Fan 1-1", "open"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[simulator.View](t, rec)
	assert.True(t, view.Open)
	assert.Len(t, view.Samples, 30)

	rec = f.do(t, http.MethodGet, "/api/state", "")
	state := decodeBody[dashboard.State](t, rec)
	assert.Equal(t, dashboard.ModalFan, state.Modal)
	assert.Equal(t, "Fan 1-1", state.Target)

	rec = f.do(t, http.MethodGet, fanPath("Fan 1-1", ""), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[simulator.View](t, rec).Open)

	rec = f.do(t, http.MethodPost, fanPath("Fan 2-1", "open"), "")
	assertError(t, rec, http.StatusConflict, "dashboard_not_on_active_site")

	rec = f.do(t, http.MethodPost, "/api/sites/1/select", "")
	require.Equal(t, http.StatusOK, rec.Code)
	state = decodeBody[dashboard.State](t, rec)
	assert.Equal(t, 1, state.Site)
	assert.Equal(t, dashboard.ModalNone, state.Modal, "switching sites closes the modal")

	st, err := f.engine.Fan("Fan 1-1")
	require.NoError(t, err)
	assert.False(t, st.ViewOpen)

	rec = f.do(t, http.MethodPost, "/api/sites/5/select", "")
	assertError(t, rec, http.StatusNotFound, "site_unknown")

	rec = f.do(t, http.MethodPost, fanPath("Fan 2-1", "open"), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/modal/close", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dashboard.ModalNone, decodeBody[dashboard.State](t, rec).Modal)
}

func TestLogs(t *testing.T) {
	f := newFixture(t, api.Deps{})

	f.do(t, http.MethodPost, fanPath("Fan 1-2", "toggle"), "")
	f.do(t, http.MethodPut, fanPath("Fan 1-2", "speed"), `{"speed": 2000}`)
	f.do(t, http.MethodPost, fanPath("Fan 1-1", "toggle"), "")

	rec := f.do(t, http.MethodGet, "/api/logs?fan="+url.QueryEscape("Fan 1-2"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decodeBody[[]eventlog.Entry](t, rec)
	require.Len(t, entries, 2)
	assert.Equal(t, "speed changed: 1500 → 2000 rpm", entries[0].Message)
	assert.Equal(t, "fan switched on", entries[1].Message)

	rec = f.do(t, http.MethodGet, "/api/logs?limit=1", "")
	entries = decodeBody[[]eventlog.Entry](t, rec)
	require.Len(t, entries, 1)
	assert.Equal(t, "Fan 1-1", entries[0].FanID)

	rec = f.do(t, http.MethodGet, "/api/logs?limit=-3", "")
	assertError(t, rec, http.StatusBadRequest, "api_bad_request")

	rec = f.do(t, http.MethodGet, "/api/logs?fan=nope", "")
	assertError(t, rec, http.StatusNotFound, "simulator_unknown_fan")
}

func TestCamera(t *testing.T) {
	f := newFixture(t, api.Deps{})
	path := "/api/cameras/" + url.PathEscape("Camera 1-1")

	rec := f.do(t, http.MethodGet, path+"/feed", "")
	assertError(t, rec, http.StatusConflict, "dashboard_no_camera_open")

	rec = f.do(t, http.MethodPost, path+"/open", "")
	require.Equal(t, http.StatusOK, rec.Code)
	frame := decodeBody[camera.Frame](t, rec)
	assert.Equal(t, "Camera 1-1", frame.Camera)
	assert.Len(t, frame.Particles, 20)

	rec = f.do(t, http.MethodPut, path+"/channel", `{"channel": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[camera.Frame](t, rec).Channel)

	rec = f.do(t, http.MethodGet, path+"/feed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[camera.Frame](t, rec).Channel)

	rec = f.do(t, http.MethodPut, path+"/channel", `{"channel": 5}`)
	assertError(t, rec, http.StatusBadRequest, "camera_unknown_channel")

	rec = f.do(t, http.MethodPut, "/api/cameras/"+url.PathEscape("Camera 1-2")+"/channel", `{"channel": 0}`)
	assertError(t, rec, http.StatusConflict, "dashboard_no_camera_open")
	rec = f.do(t, http.MethodGet, path+"/feed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[camera.Frame](t, rec).Channel)

	rec = f.do(t, http.MethodPost, "/api/cameras/"+url.PathEscape("Camera 2-1")+"/open", "")
	assertError(t, rec, http.StatusConflict, "dashboard_not_on_active_site")

	rec = f.do(t, http.MethodPost, "/api/cameras/nope/open", "")
	assertError(t, rec, http.StatusNotFound, "dashboard_unknown_camera")
}

func TestHistory(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t, api.Deps{})

		rec := f.do(t, http.MethodGet, "/api/history/events", "")
		assertError(t, rec, http.StatusNotFound, "history_disabled")
	})

	t.Run("enabled", func(t *testing.T) {
		dir := t.TempDir()
		rec, err := history.NewService(history.Config{
			Enabled:      true,
			DBPath:       dir + "/history.db",
			BackupDir:    dir,
			BatchSize:    10,
			BatchTimeout: time.Hour,
		}, logger.New(io.Discard))
		require.NoError(t, err)
		t.Cleanup(func() { _ = rec.Close() })

		ctx := context.Background()
		require.NoError(t, rec.RecordSample(ctx, &history.SampleRecord{
			Time: time.Now(), Site: "s", FanID: "Fan 1-1", Temperature: 24.5, Speed: 2000, Power: 80,
		}))
		require.NoError(t, rec.RecordEvent(ctx, &history.EventRecord{
			ID: "e1", Time: time.Now(), FanID: "Fan 1-1", Kind: "action", Message: "fan switched off",
		}))

		f := newFixture(t, api.Deps{History: rec})

		resp := f.do(t, http.MethodGet, "/api/history/samples?fan="+url.QueryEscape("Fan 1-1"), "")
		require.Equal(t, http.StatusOK, resp.Code)
		samples := decodeBody[[]history.SampleRecord](t, resp)
		require.Len(t, samples, 1)
		assert.Equal(t, 24.5, samples[0].Temperature)

		resp = f.do(t, http.MethodGet, "/api/history/samples?fan=other", "")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "[]\n", resp.Body.String())

		resp = f.do(t, http.MethodGet, "/api/history/samples", "")
		assertError(t, resp, http.StatusBadRequest, "api_bad_request")

		resp = f.do(t, http.MethodGet, "/api/history/events?limit=5", "")
		require.Equal(t, http.StatusOK, resp.Code)
		events := decodeBody[[]history.EventRecord](t, resp)
		require.Len(t, events, 1)
		assert.Equal(t, "e1", events[0].ID)
	})
}

func TestMetricsRoute(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		e, err := simulator.New(simulator.DefaultConfig(), simulator.WithLogger(logger.New(io.Discard)))
		require.NoError(t, err)
		t.Cleanup(func() { _ = e.Close() })

		m, err := metrics.NewService(metrics.DefaultConfig(), e, prometheus.NewRegistry())
		require.NoError(t, err)

		f := newFixture(t, api.Deps{Metrics: m})
		rec := f.do(t, http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ventsim_open_views 0")
	})

	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t, api.Deps{})
		rec := f.do(t, http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCORS(t *testing.T) {
	f := newFixture(t, api.Deps{})

	req := httptest.NewRequest(http.MethodOptions, "/api/sites", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
