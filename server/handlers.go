package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/theoremus-urban-solutions/fleet-pairs/matching"
)

type healthResponse struct {
	OK        bool                    `json:"ok"`
	HavePairs bool                    `json:"havePairs"`
	UpdatedAt *time.Time              `json:"updatedAt"`
	Counts    map[matching.Status]int `json:"counts"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}
	set, ok := s.pairs.Latest(r.Context())
	resp := healthResponse{OK: true, HavePairs: ok, Counts: matching.Summarize(set.Pairs)}
	if ok {
		resp.UpdatedAt = &set.UpdatedAt
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePairs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}
	s.writeJSON(w, http.StatusOK, s.pairs.Current(r.Context()))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}
	s.writeJSON(w, http.StatusOK, s.pairs.Refresh(r.Context()))
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("writing response")
	}
}
