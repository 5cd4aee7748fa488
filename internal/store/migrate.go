package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/core"
)

var (
	ErrBadAmount = errors.New("record has no usable amount")
	ErrBadType   = errors.New("record has unknown type")
)

// Record is a persisted transaction as found on disk, before normalization.
// Every field is optional so that older ledgers still decode.
type Record struct {
	ID              string          `json:"id"`
	Amount          json.RawMessage `json:"amount"`
	Type            string          `json:"type"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Date            string          `json:"date,omitempty"`
	AccountID       string          `json:"accountId"`
	TargetAccountID string          `json:"targetAccountId,omitempty"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate accepts the timestamp shapes older ledgers used. It returns the
// zero time when nothing matches. Timestamps without an offset are UTC.
func ParseDate(s string) time.Time {
	return ParseDateIn(s, time.UTC)
}

// ParseDateIn is ParseDate with offset-less timestamps read in loc.
func ParseDateIn(s string, loc *time.Location) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseRawAmount(raw json.RawMessage) (decimal.Decimal, error) {
	s := strings.TrimSpace(string(raw))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		return decimal.Zero, ErrBadAmount
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, ErrBadAmount
	}
	return d, nil
}

// Normalize turns a loose record into a transaction.
//
// A missing id gets a fresh one and a missing account defaults to salary.
// Records without a positive amount or with an unknown type are rejected.
// An unparsable date leaves the zero time, which the aggregator skips for
// date-based views. A target on anything but a transfer is dropped.
func Normalize(r Record) (core.Transaction, error) {
	amount, err := parseRawAmount(r.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	typ, err := core.ParseTxType(r.Type)
	if err != nil {
		return core.Transaction{}, ErrBadType
	}

	tx := core.Transaction{
		ID:          strings.TrimSpace(r.ID),
		Amount:      amount,
		Type:        typ,
		Category:    core.NormalizeCategory(r.Category),
		Description: r.Description,
		Date:        ParseDate(r.Date),
		AccountID:   core.AccountID(strings.ToLower(strings.TrimSpace(r.AccountID))),
	}
	if tx.ID == "" {
		tx.ID = NewID()
	}
	if tx.AccountID == "" {
		tx.AccountID = core.Salary
	}
	if typ == core.Transfer {
		tx.TargetAccountID = core.AccountID(strings.ToLower(strings.TrimSpace(r.TargetAccountID)))
	}
	return tx, nil
}

// ToRecord is the inverse of Normalize for a valid transaction.
func ToRecord(tx core.Transaction) Record {
	r := Record{
		ID:              tx.ID,
		Amount:          json.RawMessage(tx.Amount.String()),
		Type:            string(tx.Type),
		Category:        tx.Category,
		Description:     tx.Description,
		AccountID:       string(tx.AccountID),
		TargetAccountID: string(tx.TargetAccountID),
	}
	if !tx.Date.IsZero() {
		r.Date = tx.Date.Format(time.RFC3339Nano)
	}
	return r
}

// DecodeLedger decodes a JSON array of records one element at a time.
// Elements that fail to decode or normalize are counted in skipped rather than
// failing the whole ledger. Empty input is an empty ledger.
func DecodeLedger(data []byte) (txs []core.Transaction, skipped int, err error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, 0, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode ledger: %w", err)
	}
	txs = make([]core.Transaction, 0, len(raw))
	for _, elem := range raw {
		var r Record
		if err := json.Unmarshal(elem, &r); err != nil {
			skipped++
			continue
		}
		tx, err := Normalize(r)
		if err != nil {
			skipped++
			continue
		}
		txs = append(txs, tx)
	}
	return txs, skipped, nil
}

// EncodeLedger writes txs in the persisted shape: optional fields are omitted.
func EncodeLedger(txs []core.Transaction) ([]byte, error) {
	recs := make([]Record, 0, len(txs))
	for _, tx := range txs {
		recs = append(recs, ToRecord(tx))
	}
	return json.MarshalIndent(recs, "", "  ")
}
