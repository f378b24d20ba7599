package api

import (
	"net/http"
	"strconv"

	"codeberg.org/mutker/ventsim/internal/errors"
	"codeberg.org/mutker/ventsim/internal/history"
	"codeberg.org/mutker/ventsim/internal/simulator"
	"github.com/gorilla/mux"
)

const (
	defaultLogLimit     = 50
	defaultHistoryLimit = 100
)

// siteView is a floor plan with the live state of its fans
type siteView struct {
	Index   int                   `json:"index"`
	Name    string                `json:"name"`
	Fans    []simulator.FanStatus `json:"fans"`
	Cameras []string              `json:"cameras"`
}

type speedRequest struct {
	Speed *int `json:"speed"`
}

type thresholdRequest struct {
	Threshold *float64 `json:"threshold"`
}

type channelRequest struct {
	Channel *int `json:"channel"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": s.hub.Clients(),
	})
}

func (s *Server) handleSites(w http.ResponseWriter, _ *http.Request) {
	byID := make(map[string]simulator.FanStatus)
	for _, f := range s.deps.Engine.Fans() {
		byID[f.ID] = f
	}

	catalog := s.deps.Dashboard.Catalog()
	out := make([]siteView, 0, len(catalog))
	for i, site := range catalog {
		v := siteView{
			Index:   i,
			Name:    site.Name,
			Fans:    make([]simulator.FanStatus, 0, len(site.Fans)),
			Cameras: site.Cameras,
		}
		for _, f := range site.Fans {
			v.Fans = append(v.Fans, byID[f.ID])
		}
		out = append(out, v)
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSelectSite(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		s.writeError(w, r, errors.New().Wrap(ErrBadRequest, err))
		return
	}

	state, err := s.deps.Dashboard.SelectSite(i)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.deps.Dashboard.State())
}

func (s *Server) handleCloseModal(w http.ResponseWriter, r *http.Request) {
	state, err := s.deps.Dashboard.CloseModal()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleFans(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.deps.Engine.Fans())
}

func (s *Server) handleFanView(w http.ResponseWriter, r *http.Request) {
	v, err := s.deps.Engine.View(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleOpenFan(w http.ResponseWriter, r *http.Request) {
	v, err := s.deps.Dashboard.OpenFan(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	status, err := s.deps.Engine.Toggle(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req speedRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Speed == nil {
		s.writeError(w, r, errors.New().WithMessage(ErrBadRequest, "speed is required"))
		return
	}

	status, err := s.deps.Engine.SetSpeed(mux.Vars(r)["id"], *req.Speed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleThreshold(w http.ResponseWriter, r *http.Request) {
	var req thresholdRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Threshold == nil {
		s.writeError(w, r, errors.New().WithMessage(ErrBadRequest, "threshold is required"))
		return
	}

	status, err := s.deps.Engine.SetThreshold(mux.Vars(r)["id"], *req.Threshold)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	fanID := r.URL.Query().Get("fan")
	limit, err := queryLimit(r, defaultLogLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if fanID != "" {
		if _, err := s.deps.Engine.Fan(fanID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	s.writeJSON(w, http.StatusOK, s.deps.Engine.Events().ForFan(fanID, limit))
}

func (s *Server) handleOpenCamera(w http.ResponseWriter, r *http.Request) {
	frame, err := s.deps.Dashboard.OpenCamera(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, frame)
}

func (s *Server) handleCameraFeed(w http.ResponseWriter, r *http.Request) {
	frame, err := s.deps.Dashboard.CameraFrame(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, frame)
}

func (s *Server) handleCameraChannel(w http.ResponseWriter, r *http.Request) {
	var req channelRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Channel == nil {
		s.writeError(w, r, errors.New().WithMessage(ErrBadRequest, "channel is required"))
		return
	}

	frame, err := s.deps.Dashboard.SelectChannel(mux.Vars(r)["id"], *req.Channel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, frame)
}

func (s *Server) handleHistorySamples(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.history(w, r)
	if !ok {
		return
	}

	fanID := r.URL.Query().Get("fan")
	if fanID == "" {
		s.writeError(w, r, errors.New().WithMessage(ErrBadRequest, "fan is required"))
		return
	}
	limit, err := queryLimit(r, defaultHistoryLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	samples, err := rec.Samples(r.Context(), fanID, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if samples == nil {
		samples = []history.SampleRecord{}
	}
	s.writeJSON(w, http.StatusOK, samples)
}

func (s *Server) handleHistoryEvents(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.history(w, r)
	if !ok {
		return
	}

	limit, err := queryLimit(r, defaultHistoryLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	events, err := rec.Events(r.Context(), r.URL.Query().Get("fan"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if events == nil {
		events = []history.EventRecord{}
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) (history.Recorder, bool) {
	if s.deps.History == nil || !s.deps.History.Enabled() {
		s.writeError(w, r, errors.New().New(history.ErrDisabled))
		return nil, false
	}
	return s.deps.History, true
}

func queryLimit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errors.New().WithData(ErrBadRequest, "invalid limit: "+raw)
	}
	return limit, nil
}
