package http

import (
	"net/http"

	"smartspend/internal/ledger"
	"smartspend/internal/log"
)

// handleCategorize suggests a category; a null category means no suggestion.
func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*string{
		"category": s.categorizer.SuggestCategory(r.Context(), req.Description),
	})
}

// handleAdvice asks the advisor about the whole ledger, or the slice picked by
// an optional {period, account} body.
func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	if s.adviser == nil {
		writeError(w, http.StatusServiceUnavailable, "advisor is not configured")
		return
	}
	var req adviceRequest
	if err := s.decodeJSON(w, r, &req, true); err != nil {
		s.fail(w, r, log.OpAdvise, err)
		return
	}

	txs, err := s.ledger.List(r.Context())
	if err != nil {
		s.fail(w, r, log.OpAdvise, err)
		return
	}
	if req.Period != "" {
		txs = ledger.FilterByPeriod(txs, ledger.Period(req.Period), s.now().In(s.loc))
	}
	if req.Account != "" {
		txs = ledger.FilterByAccount(txs, ledger.AccountFilter(req.Account))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"advice":       s.adviser.GetAdvice(r.Context(), txs),
		"transactions": len(txs),
	})
}
