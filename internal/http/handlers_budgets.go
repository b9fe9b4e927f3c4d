package http

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
)

// budgetKey reads {month} and {context}; the month is validated by the engine.
func budgetKey(r *http.Request) (string, core.Context, error) {
	c, err := core.ParseContext(chi.URLParam(r, "context"))
	if err != nil {
		return "", "", err
	}
	return chi.URLParam(r, "month"), c, nil
}

// lineKey reads {key}, which may arrive escaped since it holds a separator.
func lineKey(r *http.Request) string {
	raw := chi.URLParam(r, "key")
	if k, err := url.PathUnescape(raw); err == nil {
		return k
	}
	return raw
}

// handleGetBudget resolves the month, seeding it from the previous month
// when it does not exist yet.
func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	month, c, err := budgetKey(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	rep, err := s.finance.Budget(r.Context(), month, c)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rep)
}

func (s *Server) handleSaveBudget(w http.ResponseWriter, r *http.Request) {
	month, c, err := budgetKey(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var body struct {
		Lines []core.BudgetLine `json:"lines"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeServiceError(w, r, err)
		return
	}
	rep, err := s.finance.SaveBudget(r.Context(), month, c, body.Lines)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rep)
}

func (s *Server) handleAddBudgetLine(w http.ResponseWriter, r *http.Request) {
	month, c, err := budgetKey(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var line core.BudgetLine
	if err := decodeJSON(r, &line); err != nil {
		writeServiceError(w, r, err)
		return
	}
	rep, err := s.finance.AddBudgetLine(r.Context(), month, c, line)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, rep)
}

func (s *Server) handleUpdateBudgetLine(w http.ResponseWriter, r *http.Request) {
	month, c, err := budgetKey(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var line core.BudgetLine
	if err := decodeJSON(r, &line); err != nil {
		writeServiceError(w, r, err)
		return
	}
	rep, err := s.finance.UpdateBudgetLine(r.Context(), month, c, lineKey(r), line)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rep)
}

func (s *Server) handleRemoveBudgetLine(w http.ResponseWriter, r *http.Request) {
	month, c, err := budgetKey(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	rep, err := s.finance.RemoveBudgetLine(r.Context(), month, c, lineKey(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rep)
}
