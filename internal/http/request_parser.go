package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"smartspend/internal/core"
	"smartspend/internal/ledger"
	"smartspend/internal/store"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// amountField accepts an amount as a JSON number or string.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*a = ""
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	*a = amountField(s)
	return nil
}

func (a amountField) parse() (decimal.Decimal, error) {
	d, err := core.ParseAmount(string(a))
	if err != nil {
		return decimal.Zero, fieldError("amount", "must be a positive number")
	}
	return d, nil
}

type transactionRequest struct {
	Type            string      `json:"type" validate:"required,oneof=income expense transfer"`
	Amount          amountField `json:"amount" validate:"required"`
	Category        string      `json:"category" validate:"max=60"`
	Description     string      `json:"description" validate:"max=200"`
	Date            string      `json:"date"`
	AccountID       string      `json:"accountId" validate:"required,oneof=salary savings cash"`
	TargetAccountID string      `json:"targetAccountId" validate:"omitempty,oneof=salary savings cash"`
}

func (req *transactionRequest) normalize() {
	req.Type = strings.ToLower(sanitizeInput(req.Type))
	req.Category = sanitizeInput(req.Category)
	req.Description = sanitizeInput(req.Description)
	req.AccountID = strings.ToLower(sanitizeInput(req.AccountID))
	req.TargetAccountID = strings.ToLower(sanitizeInput(req.TargetAccountID))
}

type transferRequest struct {
	From        string      `json:"from" validate:"required,oneof=salary savings cash"`
	To          string      `json:"to" validate:"required,oneof=salary savings cash"`
	Amount      amountField `json:"amount" validate:"required"`
	Date        string      `json:"date"`
	Description string      `json:"description" validate:"max=200"`
}

func (req *transferRequest) normalize() {
	req.From = strings.ToLower(sanitizeInput(req.From))
	req.To = strings.ToLower(sanitizeInput(req.To))
	req.Description = sanitizeInput(req.Description)
}

type salaryRequest struct {
	Amount      amountField `json:"amount" validate:"required"`
	Date        string      `json:"date"`
	Description string      `json:"description" validate:"max=200"`
}

func (req *salaryRequest) normalize() { req.Description = sanitizeInput(req.Description) }

type receivedRequest struct {
	AccountID   string      `json:"accountId" validate:"required,oneof=salary savings cash"`
	Amount      amountField `json:"amount" validate:"required"`
	Date        string      `json:"date"`
	Description string      `json:"description" validate:"max=200"`
}

func (req *receivedRequest) normalize() {
	req.AccountID = strings.ToLower(sanitizeInput(req.AccountID))
	req.Description = sanitizeInput(req.Description)
}

type bazarRequest struct {
	Item      string      `json:"item" validate:"required,max=200"`
	AccountID string      `json:"accountId" validate:"omitempty,oneof=salary savings cash"`
	Amount    amountField `json:"amount" validate:"required"`
	Date      string      `json:"date"`
}

func (req *bazarRequest) normalize() {
	req.Item = sanitizeInput(req.Item)
	req.AccountID = strings.ToLower(sanitizeInput(req.AccountID))
}

type lendingRequest struct {
	AccountID string      `json:"accountId" validate:"required,oneof=salary savings cash"`
	Amount    amountField `json:"amount" validate:"required"`
	Date      string      `json:"date"`
}

func (req *lendingRequest) normalize() { req.AccountID = strings.ToLower(sanitizeInput(req.AccountID)) }

type categorizeRequest struct {
	Description string `json:"description" validate:"required,max=200"`
}

func (req *categorizeRequest) normalize() { req.Description = sanitizeInput(req.Description) }

type adviceRequest struct {
	Period  string `json:"period" validate:"omitempty,oneof=month year all"`
	Account string `json:"account" validate:"omitempty,oneof=all salary savings cash"`
}

func (req *adviceRequest) normalize() {
	req.Period = strings.ToLower(sanitizeInput(req.Period))
	req.Account = strings.ToLower(sanitizeInput(req.Account))
}

type normalizer interface{ normalize() }

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads, normalizes and validates a request body into dst.
// An empty body is allowed when optional is set.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst normalizer, optional bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF) && optional:
		case errors.Is(err, io.EOF):
			return badRequest("request body is empty")
		case errors.As(err, &maxErr):
			return badRequest("request body too large")
		default:
			return badRequest("invalid JSON body: %v", err)
		}
	}
	dst.normalize()
	if err := s.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// parseDateField reads an optional request date; empty means now. Dates
// without an offset are read in loc.
func parseDateField(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, nil
	}
	t := store.ParseDateIn(s, loc)
	if t.IsZero() {
		return time.Time{}, fieldError("date", "must be YYYY-MM-DD or RFC3339")
	}
	return t, nil
}

// viewParams are the query parameters shared by the read endpoints.
type viewParams struct {
	Period ledger.Period
	Filter ledger.AccountFilter
	Now    time.Time
}

// parseViewParams reads ?period=&account=&now=. now defaults to the server clock.
func (s *Server) parseViewParams(r *http.Request) (viewParams, error) {
	q := r.URL.Query()
	period, err := ledger.ParsePeriod(q.Get("period"))
	if err != nil {
		return viewParams{}, fieldError("period", "must be one of month, year, all")
	}
	filter, err := ledger.ParseAccountFilter(q.Get("account"))
	if err != nil {
		return viewParams{}, fieldError("account", "must be all, salary, savings or cash")
	}
	now, err := s.referenceTime(q.Get("now"))
	if err != nil {
		return viewParams{}, err
	}
	return viewParams{Period: period, Filter: filter, Now: now}, nil
}

func (s *Server) referenceTime(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return s.now().In(s.loc), nil
	}
	t := store.ParseDateIn(raw, s.loc)
	if t.IsZero() {
		return time.Time{}, fieldError("now", "must be YYYY-MM-DD or RFC3339")
	}
	return t, nil
}

// intQuery reads an integer query parameter clamped to [min, max].
func intQuery(r *http.Request, key string, def, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fieldError(key, "must be an integer")
	}
	if n < min {
		n = min
	}
	if n > max {
		n = max
	}
	return n, nil
}

// sanitizeInput removes control characters except tab and newlines and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
