package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"smartspend/internal/core"
	"smartspend/internal/log"
)

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	amount, err := req.Amount.parse()
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	date, err := parseDateField(req.Date, s.now(), s.loc)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	tx, err := s.ledger.Transfer(r.Context(), core.AccountID(req.From), core.AccountID(req.To), amount, date, req.Description)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleSalary(w http.ResponseWriter, r *http.Request) {
	var req salaryRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	amount, err := req.Amount.parse()
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	date, err := parseDateField(req.Date, s.now(), s.loc)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	tx, err := s.ledger.AddSalary(r.Context(), amount, date, req.Description)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleReceived(w http.ResponseWriter, r *http.Request) {
	var req receivedRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	amount, err := req.Amount.parse()
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	date, err := parseDateField(req.Date, s.now(), s.loc)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	tx, err := s.ledger.AddReceived(r.Context(), core.AccountID(req.AccountID), amount, date, req.Description)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

// handleAddBazar records one grocery item; the account defaults to cash.
func (s *Server) handleAddBazar(w http.ResponseWriter, r *http.Request) {
	var req bazarRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	amount, err := req.Amount.parse()
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	at, err := parseDateField(req.Date, s.now(), s.loc)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	tx, err := s.ledger.AddBazarItem(r.Context(), req.Item, core.AccountID(req.AccountID), amount, at)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleLend(w http.ResponseWriter, r *http.Request) {
	s.handleLending(w, r, true)
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	s.handleLending(w, r, false)
}

func (s *Server) handleLending(w http.ResponseWriter, r *http.Request, lend bool) {
	person := sanitizeInput(chi.URLParam(r, "person"))
	if strings.TrimSpace(person) == "" {
		s.fail(w, r, log.OpCreate, fieldError("person", "is required"))
		return
	}
	var req lendingRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	amount, err := req.Amount.parse()
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	date, err := parseDateField(req.Date, s.now(), s.loc)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}

	account := core.AccountID(req.AccountID)
	var tx core.Transaction
	if lend {
		tx, err = s.ledger.Lend(r.Context(), person, account, amount, date)
	} else {
		tx, err = s.ledger.RecordReturn(r.Context(), person, account, amount, date)
	}
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}
