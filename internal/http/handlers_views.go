package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/ledger"
)

type balancesResponse struct {
	core.Balances
	Version uint64 `json:"version"`
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	b, snap := s.views.Balances()
	writeJSON(w, r, http.StatusOK, balancesResponse{Balances: b, Version: snap.Version})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	sel, err := core.ParseSelector(r.URL.Query().Get("context"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.views.Insights(sel))
}

// handleOptions lists filter values for the given context view.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel, err := core.ParseSelector(q.Get("context"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	txs := finance.FilterByContext(s.finance.Snapshot().Transactions, sel)
	writeJSON(w, r, http.StatusOK, ledger.ListOptions(txs, q.Get("category")))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	sel, err := core.ParseSelector(r.URL.Query().Get("context"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.views.GoalProgress(sel))
}

// handleSaveGoal creates a goal on POST and replaces one on PUT /{id}.
func (s *Server) handleSaveGoal(w http.ResponseWriter, r *http.Request) {
	var g core.Goal
	if err := decodeJSON(r, &g); err != nil {
		writeServiceError(w, r, err)
		return
	}
	status := http.StatusCreated
	if id := chi.URLParam(r, "id"); id != "" {
		g.ID = id
		status = http.StatusOK
	}
	saved, err := s.finance.SaveGoal(r.Context(), g)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, status, saved)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.finance.DeleteGoal(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.finance.Snapshot().Config)
}

func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var cfg core.AppConfig
	if err := decodeJSON(r, &cfg); err != nil {
		writeServiceError(w, r, err)
		return
	}
	saved, err := s.finance.SaveConfig(r.Context(), cfg)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, saved)
}
