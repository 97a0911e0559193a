package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/transport-tracking/internal/mission"
	"github.com/example/transport-tracking/internal/models"
	"github.com/example/transport-tracking/internal/tracker"
)

// Server is the agent's local HTTP surface: health, metrics, the
// tracking snapshot, and the single mission action control. This is
// what a UI shell (or an operator's curl) presses buttons through.
type Server struct {
	logger     *slog.Logger
	snapshot   func() tracker.Snapshot
	controller func() *mission.Controller // nil when no active mission
	mux        *mux.Router
}

func NewServer(logger *slog.Logger, snapshot func() tracker.Snapshot, controller func() *mission.Controller) *Server {
	s := &Server{logger: logger, snapshot: snapshot, controller: controller, mux: mux.NewRouter()}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/status", s.handleStatus).Methods("GET")
	s.mux.HandleFunc("/mission/advance", s.handleAdvance).Methods("POST")
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

type missionView struct {
	ID     int            `json:"id"`
	Statut models.Statut  `json:"statut"`
	Action mission.Action `json:"action"`
}

type statusResponse struct {
	Position tracker.Snapshot `json:"position"`
	Mission  *missionView     `json:"mission,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Position: s.snapshot()}
	if c := s.controller(); c != nil {
		resp.Mission = &missionView{ID: c.MissionID(), Statut: c.Statut(), Action: c.Action()}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAdvance is the action button: it submits the single valid next
// transition for the active mission.
func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	c := s.controller()
	if c == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active mission"})
		return
	}
	statut, err := c.Submit(r.Context())
	switch {
	case errors.Is(err, mission.ErrSubmitInFlight), errors.Is(err, mission.ErrIllegalTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error(), "statut": string(statut)})
		return
	case err != nil:
		// the action failure IS surfaced, unlike telemetry drops
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error(), "statut": string(statut)})
		return
	}
	writeJSON(w, http.StatusOK, missionView{ID: c.MissionID(), Statut: statut, Action: mission.NextAction(statut)})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
