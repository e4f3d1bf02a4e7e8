package filter

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardview-dev/cardview/internal/model"
)

// Criteria holds the raw search and filter input. Every field is free text as
// typed by the user; a field that is empty or does not parse leaves its clause
// inactive.
type Criteria struct {
	Search    string // substring of cardholder or status, case-insensitive
	Status    string // exact status
	MinAmount string // inclusive lower amount bound
	MaxAmount string // inclusive upper amount bound
	StartDate string // inclusive lower date bound, YYYY-MM-DD
	EndDate   string // inclusive upper date bound, YYYY-MM-DD
}

// Reset clears the structured filters and keeps the search text.
func (c Criteria) Reset() Criteria {
	return Criteria{Search: c.Search}
}

// Active reports whether any clause would restrict the result set.
func (c Criteria) Active() bool {
	return len(c.compile()) > 0
}

// Apply returns the transactions matching every active clause, in their
// original order. The input slice is not modified.
func Apply(txns []model.Transaction, c Criteria) []model.Transaction {
	preds := c.compile()
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if matchAll(preds, t) {
			out = append(out, t)
		}
	}
	return out
}

// Match reports whether a single transaction passes the criteria.
func (c Criteria) Match(t model.Transaction) bool {
	return matchAll(c.compile(), t)
}

type predicate func(model.Transaction) bool

func matchAll(preds []predicate, t model.Transaction) bool {
	for _, p := range preds {
		if !p(t) {
			return false
		}
	}
	return true
}

// compile turns the raw fields into the list of active clauses.
func (c Criteria) compile() []predicate {
	var preds []predicate

	if c.Search != "" {
		needle := strings.ToLower(c.Search)
		preds = append(preds, func(t model.Transaction) bool {
			return strings.Contains(strings.ToLower(t.Cardholder), needle) ||
				strings.Contains(strings.ToLower(string(t.Status)), needle)
		})
	}

	if c.Status != "" {
		status := model.Status(c.Status)
		preds = append(preds, func(t model.Transaction) bool {
			return t.Status == status
		})
	}

	if lo, ok := parseAmount(c.MinAmount); ok {
		preds = append(preds, func(t model.Transaction) bool {
			return t.Amount.GreaterThanOrEqual(lo)
		})
	}

	if hi, ok := parseAmount(c.MaxAmount); ok {
		preds = append(preds, func(t model.Transaction) bool {
			return t.Amount.LessThanOrEqual(hi)
		})
	}

	if start, ok := parseDate(c.StartDate); ok {
		preds = append(preds, func(t model.Transaction) bool {
			created, err := t.CreatedAt()
			return err == nil && !created.Before(start)
		})
	}

	if end, ok := parseDate(c.EndDate); ok {
		preds = append(preds, func(t model.Transaction) bool {
			created, err := t.CreatedAt()
			return err == nil && !created.After(end)
		})
	}

	return preds
}

func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

const dateLayout = "2006-01-02"

// parseDate reads a bound as the start of its calendar day in UTC.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(dateLayout, s)
	if err != nil {
		ts, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, false
		}
	}
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}
