package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"smartspend/internal/core"
	"smartspend/internal/ledger"
	"smartspend/internal/log"
)

type transactionList struct {
	Transactions []core.Transaction `json:"transactions"`
	Count        int                `json:"count"`
}

func newTransactionList(txs []core.Transaction) transactionList {
	if txs == nil {
		txs = []core.Transaction{}
	}
	return transactionList{Transactions: txs, Count: len(txs)}
}

// handleListTransactions returns the ledger filtered by period and account,
// newest first.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	params, err := s.parseViewParams(r)
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	all, err := s.ledger.List(r.Context())
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	filtered := ledger.FilterByAccount(ledger.FilterByPeriod(all, params.Period, params.Now), params.Filter)
	writeJSON(w, http.StatusOK, newTransactionList(ledger.SortNewestFirst(filtered)))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	tx, err := s.transactionFrom(req, s.now())
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	saved, err := s.ledger.Add(r.Context(), tx)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	w.Header().Set("Location", "/api/v1/transactions/"+saved.ID)
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.ledger.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// handleUpdateTransaction replaces a transaction. An omitted date keeps the
// stored one.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := s.ledger.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}

	var req transactionRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	tx, err := s.transactionFrom(req, existing.Date)
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	tx.ID = id
	if err := s.ledger.Update(r.Context(), tx); err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	updated, err := s.ledger.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// transactionFrom converts a validated request; defaultDate fills a missing date.
func (s *Server) transactionFrom(req transactionRequest, defaultDate time.Time) (core.Transaction, error) {
	amount, err := req.Amount.parse()
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := parseDateField(req.Date, defaultDate, s.loc)
	if err != nil {
		return core.Transaction{}, err
	}
	tx := core.Transaction{
		Amount:      amount,
		Type:        core.TxType(req.Type),
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
		AccountID:   core.AccountID(req.AccountID),
	}
	if tx.Type == core.Transfer {
		tx.TargetAccountID = core.AccountID(req.TargetAccountID)
		if strings.TrimSpace(tx.Category) == "" {
			tx.Category = core.CategoryTransfer
		}
	} else if req.TargetAccountID != "" {
		return core.Transaction{}, core.ErrUnexpectedTarget
	}
	return tx, nil
}
