package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts travel as JSON numbers, matching the persisted ledger shape
	decimal.MarshalJSONWithoutQuotes = true
}

// TxType is the direction of a transaction.
type TxType string

const (
	Income   TxType = "income"
	Expense  TxType = "expense"
	Transfer TxType = "transfer"
)

func (t TxType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

// ParseTxType accepts any casing and surrounding whitespace.
func ParseTxType(s string) (TxType, error) {
	t := TxType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

// MaxDescriptionLength bounds free text descriptions.
const MaxDescriptionLength = 200

type Transaction struct {
	ID              string          `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Type            TxType          `json:"type"`
	Category        Category        `json:"category"`
	Description     string          `json:"description"`
	Date            time.Time       `json:"date"`
	AccountID       AccountID       `json:"accountId"`
	TargetAccountID AccountID       `json:"targetAccountId,omitempty"`
}

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrMissingTarget      = errors.New("transfer requires a valid target account")
	ErrUnexpectedTarget   = errors.New("target account is only allowed on transfers")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrMissingDate        = errors.New("date cannot be zero")
)

// IsTransfer reports whether t moves money between two accounts.
func (t Transaction) IsTransfer() bool { return t.Type == Transfer }

// IsSelfTransfer reports a transfer whose source and target are the same account.
func (t Transaction) IsSelfTransfer() bool {
	return t.Type == Transfer && t.AccountID == t.TargetAccountID
}

// Touches reports whether account a sits on either leg of t.
func (t Transaction) Touches(a AccountID) bool {
	return t.AccountID == a || (t.TargetAccountID != "" && t.TargetAccountID == a)
}

// Validate checks a transaction entering the ledger. Records read back from
// storage go through the load-time normalization instead.
func (t Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if !t.AccountID.Valid() {
		return ErrInvalidAccount
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	switch t.Type {
	case Transfer:
		if !t.TargetAccountID.Valid() {
			return ErrMissingTarget
		}
	default:
		if t.TargetAccountID != "" {
			return ErrUnexpectedTarget
		}
		if strings.TrimSpace(t.Description) == "" {
			return ErrEmptyDescription
		}
	}
	return nil
}
