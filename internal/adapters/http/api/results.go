package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/nameprop/internal/adapters/repository"
)

// ResultsHandler serves accumulated results.
type ResultsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps Dependencies, maxLimit int) *ResultsHandler {
	return &ResultsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleListResults handles GET /results?condition=C&limit=N requests. With
// a condition the rows are ranked by error rate.
func (h *ResultsHandler) HandleListResults(w http.ResponseWriter, r *http.Request) {
	limit := h.maxLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid limit %q", ErrBadRequest, s))
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", fmt.Errorf("%w: limit above %d", ErrBadRequest, h.maxLimit))
			return
		}
		limit = n
	}
	results, err := h.deps.Results(r.Context(), r.URL.Query().Get("condition"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// HandleGetResult handles GET /results/{condition}/{pipeline} requests.
func (h *ResultsHandler) HandleGetResult(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.Result(r.Context(), r.PathValue("condition"), r.PathValue("pipeline"))
	if err != nil {
		if errors.Is(err, repository.ErrNoResult) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
