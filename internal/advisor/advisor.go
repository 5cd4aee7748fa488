package advisor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"smartspend/internal/cache"
	"smartspend/internal/core"
	"smartspend/internal/ledger"
)

// Fixed replies shown instead of model output.
const (
	NoTransactionsMessage = "Please add some transactions to receive AI-powered financial advice."
	EmptyAdviceMessage    = "Could not generate advice at this time."
	AdviceErrorMessage    = "Sorry, I'm having trouble analyzing your data right now. Please try again later."
)

// MaxAdviceTransactions bounds how much history goes into the prompt.
const MaxAdviceTransactions = 50

// Advisor produces markdown advice for a ledger.
type Advisor struct {
	gen   Generator
	model string
	cache cache.Cache[string]
}

// New returns an advisor. model defaults to DefaultModel; c may be nil.
func New(gen Generator, model string, c cache.Cache[string]) *Advisor {
	if model == "" {
		model = DefaultModel
	}
	return &Advisor{gen: gen, model: model, cache: c}
}

// GetAdvice never fails: problems are logged and a fixed message returned.
func (a *Advisor) GetAdvice(ctx context.Context, txs []core.Transaction) string {
	if len(txs) == 0 {
		return NoTransactionsMessage
	}

	prompt, err := AdvicePrompt(txs)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build advice prompt", "error", err)
		return AdviceErrorMessage
	}

	key := promptKey(a.model, prompt)
	if a.cache != nil {
		if cached, ok := a.cache.Get(key); ok {
			return cached
		}
	}

	text, err := a.gen.Generate(ctx, a.model, prompt)
	if err != nil {
		slog.ErrorContext(ctx, "Gemini API error", "model", a.model, "error", err)
		return AdviceErrorMessage
	}
	if strings.TrimSpace(text) == "" {
		return EmptyAdviceMessage
	}

	if a.cache != nil {
		a.cache.Set(key, text)
	}
	return text
}

// AdvicePrompt embeds the most recent transactions as JSON.
func AdvicePrompt(txs []core.Transaction) (string, error) {
	recent := ledger.MostRecent(txs, MaxAdviceTransactions)
	data, err := json.Marshal(recent)
	if err != nil {
		return "", fmt.Errorf("encode transactions: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a financial advisor. Analyze the following list of recent financial transactions (JSON format).\n\n")
	b.WriteString("Transactions:\n")
	b.Write(data)
	b.WriteString("\n\nPlease provide a concise analysis in Markdown format:\n")
	b.WriteString("1. Identify the top spending category.\n")
	b.WriteString("2. Point out any unusual spending patterns or frequent small expenses.\n")
	b.WriteString("3. Give one specific, actionable tip to improve savings based on this data.\n")
	b.WriteString("4. Keep the tone encouraging but professional.\n")
	b.WriteString("5. Keep it under 200 words.\n")
	return b.String(), nil
}

func promptKey(model, prompt string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}
