package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"smartspend/internal/core"
)

// Categorizer suggests a category for a free text description. A nil result
// means no suggestion.
type Categorizer interface {
	SuggestCategory(ctx context.Context, description string) *string
}

// ModelCategorizer asks the model for a single category word.
type ModelCategorizer struct {
	gen   Generator
	model string
}

func NewModelCategorizer(gen Generator, model string) *ModelCategorizer {
	if model == "" {
		model = DefaultModel
	}
	return &ModelCategorizer{gen: gen, model: model}
}

func (c *ModelCategorizer) SuggestCategory(ctx context.Context, description string) *string {
	if strings.TrimSpace(description) == "" {
		return nil
	}
	text, err := c.gen.Generate(ctx, c.model, CategorizePrompt(description))
	if err != nil {
		slog.DebugContext(ctx, "Categorize request failed", "error", err)
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return &text
}

// CategorizePrompt is the single-word classification prompt.
func CategorizePrompt(description string) string {
	return fmt.Sprintf("Categorize this expense description into a single short category name (e.g. 'Food', 'Transport', 'Utilities'). Description: \"%s\". Return ONLY the category word.", description)
}

type keywordRule struct {
	keywords []string
	category core.Category
}

// keywordPattern matches kw as whole words, allowing a plural s or es.
func keywordPattern(kw string) *regexp.Regexp {
	words := strings.Fields(strings.ToLower(kw))
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b` + strings.Join(words, `\s+`) + `(?:e?s)?\b`)
}

type compiledRule struct {
	patterns []*regexp.Regexp
	category core.Category
}

func compileRules(rules []keywordRule) []compiledRule {
	out := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		cr := compiledRule{category: r.category}
		for _, kw := range r.keywords {
			cr.patterns = append(cr.patterns, keywordPattern(kw))
		}
		out = append(out, cr)
	}
	return out
}

// KeywordCategorizer matches descriptions offline.
type KeywordCategorizer struct {
	rules         []compiledRule
	known         []string
	knownPatterns []*regexp.Regexp
}

var defaultRules = []keywordRule{
	{[]string{"rice", "onion", "potato", "vegetable", "fish", "egg", "oil", "lentil", "dal", "grocery", "groceries", "bazar", "market"}, core.CategoryBazar},
	{[]string{"lunch", "dinner", "breakfast", "restaurant", "cafe", "coffee", "tea", "pizza", "burger", "foodpanda"}, core.CategoryFood},
	{[]string{"uber", "pathao", "bus", "rickshaw", "cng", "taxi", "fuel", "petrol", "train", "metro"}, core.CategoryTransport},
	{[]string{"electric", "electricity", "gas bill", "water bill", "internet", "wifi", "mobile recharge", "phone bill"}, core.CategoryUtilities},
	{[]string{"rent", "landlord", "maintenance"}, core.CategoryHousing},
	{[]string{"netflix", "spotify", "youtube", "cinema", "movie", "game", "concert"}, core.CategoryEntertainment},
	{[]string{"clothes", "shoes", "amazon", "daraz", "mall", "gift"}, core.CategoryShopping},
	{[]string{"doctor", "pharmacy", "medicine", "hospital", "clinic", "dentist"}, core.CategoryHealth},
	{[]string{"salary", "payroll", "wage"}, core.CategorySalary},
	{[]string{"dps", "fdr", "stock", "share", "mutual fund", "sanchayapatra"}, core.CategoryInvestment},
	{[]string{"lent to", "returned by", "loan"}, core.CategoryLending},
}

var defaultCompiled = compileRules(defaultRules)

// NewKeywordCategorizer uses the built-in rules; known labels are also
// matched as whole words of the description.
func NewKeywordCategorizer(known ...string) *KeywordCategorizer {
	c := &KeywordCategorizer{rules: defaultCompiled}
	for _, k := range known {
		k = core.NormalizeCategory(k)
		if k == "" {
			continue
		}
		c.known = append(c.known, k)
		c.knownPatterns = append(c.knownPatterns, keywordPattern(k))
	}
	return c
}

func (c *KeywordCategorizer) SuggestCategory(_ context.Context, description string) *string {
	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return nil
	}
	for _, rule := range c.rules {
		for _, re := range rule.patterns {
			if re.MatchString(desc) {
				cat := rule.category
				return &cat
			}
		}
	}
	for i, re := range c.knownPatterns {
		if re.MatchString(desc) {
			k := c.known[i]
			return &k
		}
	}
	return nil
}

// Chain returns the first suggestion of its categorizers.
type Chain []Categorizer

func (ch Chain) SuggestCategory(ctx context.Context, description string) *string {
	for _, c := range ch {
		if c == nil {
			continue
		}
		if s := c.SuggestCategory(ctx, description); s != nil {
			return s
		}
	}
	return nil
}
