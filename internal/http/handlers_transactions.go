package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/ledger"
)

// handleListTransactions serves one ledger page. Query parameters map to
// ledger.Criteria; unknown parameters are ignored.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r.URL.Query(), s.finance.Location())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	res := ledger.Query(s.finance.Snapshot().Transactions, c)
	writeJSON(w, r, http.StatusOK, toLedgerPage(res))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in transactionInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	t, err := in.toTransaction(s.finance.Location())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	created, err := s.finance.CreateTransaction(r.Context(), t)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toTransactionJSON(created))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var in transactionInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	t, err := in.toTransaction(s.finance.Location())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	updated, err := s.finance.UpdateTransaction(r.Context(), chi.URLParam(r, "id"), t)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toTransactionJSON(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.finance.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSummary totals the filtered set in one currency, the primary
// currency of the configuration when none is given.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, err := parseCriteria(q, s.finance.Location())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	snap := s.finance.Snapshot()
	currency := strings.ToUpper(strings.TrimSpace(q.Get("currency")))
	if currency == "" {
		currency = snap.Config.PrimaryCurrency()
	}
	filtered := ledger.Filter(finance.FilterByContext(snap.Transactions, c.Context), c)
	writeJSON(w, r, http.StatusOK, ledger.Summarize(filtered, currency))
}

func parseCriteria(q url.Values, loc *time.Location) (ledger.Criteria, error) {
	sel, err := core.ParseSelector(q.Get("context"))
	if err != nil {
		return ledger.Criteria{}, err
	}
	c := ledger.Criteria{
		Context:            sel,
		Category:           strings.TrimSpace(q.Get("category")),
		Subcategory:        strings.TrimSpace(q.Get("subcategory")),
		Account:            strings.TrimSpace(q.Get("account")),
		Search:             q.Get("q"),
		MissingSubcategory: q.Get("missingSubcategory") == "true",
		Location:           loc,
	}
	if v := q.Get("type"); v != "" {
		t, err := core.ParseTxType(v)
		if err != nil {
			return ledger.Criteria{}, err
		}
		c.Type = string(t)
	}
	if v := q.Get("from"); v != "" {
		if c.From, err = parseDay(v, loc); err != nil {
			return ledger.Criteria{}, err
		}
	}
	if v := q.Get("to"); v != "" {
		if c.To, err = parseDay(v, loc); err != nil {
			return ledger.Criteria{}, err
		}
	}
	if c.MinAmount, err = optionalFloat(q, "min"); err != nil {
		return ledger.Criteria{}, err
	}
	if c.MaxAmount, err = optionalFloat(q, "max"); err != nil {
		return ledger.Criteria{}, err
	}
	if c.Page, err = optionalInt(q, "page"); err != nil {
		return ledger.Criteria{}, err
	}
	if c.PageSize, err = optionalInt(q, "pageSize"); err != nil {
		return ledger.Criteria{}, err
	}
	return c, nil
}

func optionalFloat(q url.Values, key string) (*float64, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s %q", errBadRequest, key, v)
	}
	return &f, nil
}

func optionalInt(q url.Values, key string) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, key, v)
	}
	return n, nil
}
