package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) routes(r *mux.Router) {
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/ws", s.hub).Methods(http.MethodGet)
	if s.deps.Metrics != nil && s.deps.Metrics.Enabled() {
		r.Handle("/metrics", s.deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/sites", s.handleSites).Methods(http.MethodGet)
	api.HandleFunc("/sites/{index:[0-9]+}/select", s.handleSelectSite).Methods(http.MethodPost)
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/modal/close", s.handleCloseModal).Methods(http.MethodPost)

	api.HandleFunc("/fans", s.handleFans).Methods(http.MethodGet)
	api.HandleFunc("/fans/{id}", s.handleFanView).Methods(http.MethodGet)
	api.HandleFunc("/fans/{id}/open", s.handleOpenFan).Methods(http.MethodPost)
	api.HandleFunc("/fans/{id}/toggle", s.handleToggle).Methods(http.MethodPost)
	api.HandleFunc("/fans/{id}/speed", s.handleSpeed).Methods(http.MethodPut)
	api.HandleFunc("/fans/{id}/threshold", s.handleThreshold).Methods(http.MethodPut)

	api.HandleFunc("/logs", s.handleLogs).Methods(http.MethodGet)

	api.HandleFunc("/cameras/{id}/open", s.handleOpenCamera).Methods(http.MethodPost)
	api.HandleFunc("/cameras/{id}/feed", s.handleCameraFeed).Methods(http.MethodGet)
	api.HandleFunc("/cameras/{id}/channel", s.handleCameraChannel).Methods(http.MethodPut)

	api.HandleFunc("/history/samples", s.handleHistorySamples).Methods(http.MethodGet)
	api.HandleFunc("/history/events", s.handleHistoryEvents).Methods(http.MethodGet)
}
