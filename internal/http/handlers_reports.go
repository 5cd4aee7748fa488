package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"smartspend/internal/core"
	"smartspend/internal/ledger"
	"smartspend/internal/log"
	"smartspend/internal/reports"
)

// view loads the ledger and the shared query parameters.
func (s *Server) view(w http.ResponseWriter, r *http.Request) ([]core.Transaction, viewParams, bool) {
	params, err := s.parseViewParams(r)
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return nil, viewParams{}, false
	}
	all, err := s.ledger.List(r.Context())
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return nil, viewParams{}, false
	}
	return all, params, true
}

func (p viewParams) apply(all []core.Transaction) []core.Transaction {
	return ledger.FilterByAccount(ledger.FilterByPeriod(all, p.Period, p.Now), p.Filter)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	all, params, ok := s.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"period":  params.Period,
		"account": params.Filter,
		"summary": ledger.Summarize(all, params.Period, params.Filter, params.Now),
	})
}

type balancesResponse struct {
	AsOf     *time.Time      `json:"asOf,omitempty"`
	Balances core.Balances   `json:"balances"`
	Total    decimal.Decimal `json:"total"`
}

// handleBalances folds current balances, or historical ones with ?asOf=.
func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	all, err := s.ledger.List(r.Context())
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}

	var resp balancesResponse
	if raw := r.URL.Query().Get("asOf"); raw != "" {
		cutoff, err := s.referenceTime(raw)
		if err != nil {
			s.fail(w, r, log.OpRead, fieldError("asOf", "must be YYYY-MM-DD or RFC3339"))
			return
		}
		// a bare date means the end of that day
		if len(raw) == len("2006-01-02") {
			cutoff = cutoff.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		resp.AsOf = &cutoff
		resp.Balances = ledger.HistoricalBalanceAsOf(all, cutoff)
	} else {
		resp.Balances = ledger.ComputeAccountBalances(all)
	}
	resp.Total = resp.Balances.Total()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	all, params, ok := s.view(w, r)
	if !ok {
		return
	}
	days := reports.DailyHistory(params.apply(all), s.loc)
	if days == nil {
		days = []ledger.Group{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 || year > 9999 {
		s.fail(w, r, log.OpRead, fieldError("year", "must be between 1 and 9999"))
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		s.fail(w, r, log.OpRead, fieldError("month", "must be between 1 and 12"))
		return
	}
	all, err := s.ledger.List(r.Context())
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, reports.MonthlyStatement(all, year, time.Month(month), s.loc))
}

// handleTop ranks expense descriptions within the period.
func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	n, err := intQuery(r, "n", 5, 1, 100)
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	all, params, ok := s.view(w, r)
	if !ok {
		return
	}
	var expenses []core.Transaction
	for _, tx := range params.apply(all) {
		if tx.Type == core.Expense {
			expenses = append(expenses, tx)
		}
	}
	top := ledger.TopNByDescription(expenses, n)
	if top == nil {
		top = []core.DescriptionTotal{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"top": top})
}

// handleLendingDirectory lists everyone with lending activity; ?q= searches names.
func (s *Server) handleLendingDirectory(w http.ResponseWriter, r *http.Request) {
	all, err := s.ledger.List(r.Context())
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	dir := reports.LendingDirectory(all)
	people := reports.SearchPeople(dir, r.URL.Query().Get("q"))
	if people == nil {
		people = []reports.PersonBalance{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"people":           people,
		"totalOutstanding": reports.TotalOutstanding(dir),
	})
}

func (s *Server) handlePersonHistory(w http.ResponseWriter, r *http.Request) {
	person := sanitizeInput(chi.URLParam(r, "person"))
	all, err := s.ledger.List(r.Context())
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	history := reports.PersonHistory(all, person)
	balance := decimal.Zero
	for _, p := range reports.LendingDirectory(all) {
		if p.Name == person {
			balance = p.Balance
		}
	}
	resp := newTransactionList(history)
	writeJSON(w, http.StatusOK, map[string]any{
		"person":       person,
		"balance":      balance,
		"transactions": resp.Transactions,
		"count":        resp.Count,
	})
}

// handleBazar is this month's grocery list with the lifetime figures.
func (s *Server) handleBazar(w http.ResponseWriter, r *http.Request) {
	all, params, ok := s.view(w, r)
	if !ok {
		return
	}
	month := ledger.SortNewestFirst(reports.BazarForMonth(all, params.Now))
	monthTotal := decimal.Zero
	for _, tx := range month {
		monthTotal = monthTotal.Add(tx.Amount)
	}
	topItems := reports.BazarTopItems(all, 5)
	if topItems == nil {
		topItems = []core.DescriptionTotal{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":         newTransactionList(month).Transactions,
		"monthTotal":    monthTotal,
		"lifetimeTotal": reports.BazarLifetimeTotal(all),
		"topItems":      topItems,
	})
}

func (s *Server) handleBazarTrips(w http.ResponseWriter, r *http.Request) {
	all, err := s.ledger.List(r.Context())
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trips": reports.BazarTrips(all)})
}

func (s *Server) handleBazarMonthly(w http.ResponseWriter, r *http.Request) {
	all, err := s.ledger.List(r.Context())
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"months": reports.BazarMonthly(all)})
}

func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	all, params, ok := s.view(w, r)
	if !ok {
		return
	}
	rows := reports.ExpensesByCategory(params.apply(all))
	if rows == nil {
		rows = []core.CategoryAmount{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": rows})
}

// handleActivityChart scopes by account only; the bars lay out the period themselves.
func (s *Server) handleActivityChart(w http.ResponseWriter, r *http.Request) {
	all, params, ok := s.view(w, r)
	if !ok {
		return
	}
	bars := reports.ActivityBars(ledger.FilterByAccount(all, params.Filter), params.Period, params.Now)
	if bars == nil {
		bars = []reports.Bar{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"period": params.Period, "bars": bars})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.Categories(r.Context())
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}
