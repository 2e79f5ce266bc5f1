// Package extract turns a biography into (category, value) pairs across
// the fixed extraction taxonomy. Strategies are interchangeable: the LLM
// strategies refine what the rule engine would find, and the chain falls
// back to rules whenever a model call fails.
package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/facultykb/facultygraph/internal/metrics"
	"github.com/facultykb/facultygraph/internal/models"
)

// Result maps each taxonomy category to its distinct extracted values.
type Result map[models.Category][]string

// Add appends value under cat unless the (value, category) pair is
// already present. Empty values are dropped.
func (r Result) Add(cat models.Category, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	for _, v := range r[cat] {
		if v == value {
			return
		}
	}
	r[cat] = append(r[cat], value)
}

// Values returns the values under cat, never nil.
func (r Result) Values(cat models.Category) []string {
	return r[cat]
}

// Total counts all extracted values.
func (r Result) Total() int {
	n := 0
	for _, vs := range r {
		n += len(vs)
	}
	return n
}

// Strategy is one way of extracting entities from a biography.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string

	// Extract returns the entities found in text for the given subject.
	Extract(ctx context.Context, subject, text string) (Result, error)
}

// Chain runs strategies in order and returns the first successful,
// non-empty result. The rule strategy sits last and cannot fail, so a
// chain that includes it always produces a result.
type Chain struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewChain builds a fallback chain. Strategies are tried in the order
// given.
func NewChain(logger *slog.Logger, strategies ...Strategy) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{strategies: strategies, logger: logger}
}

// Extract runs the chain. The subject name is guaranteed to be present
// under the person-name category whenever it is at least two runes long,
// regardless of which strategy produced the result.
func (c *Chain) Extract(ctx context.Context, subject, text string) Result {
	for i, s := range c.strategies {
		res, err := s.Extract(ctx, subject, text)
		if err != nil {
			if i < len(c.strategies)-1 {
				metrics.Inc(metrics.ExtractFallbacks)
			}
			c.logger.Warn("extraction strategy failed, falling back",
				"strategy", s.Name(), "subject", subject, "error", err)
			continue
		}
		if res.Total() == 0 {
			c.logger.Warn("extraction strategy returned nothing, falling back",
				"strategy", s.Name(), "subject", subject)
			continue
		}
		ensureSubject(res, subject)
		c.logger.Debug("extraction complete",
			"strategy", s.Name(), "subject", subject, "values", res.Total())
		return res
	}

	res := Result{}
	ensureSubject(res, subject)
	return res
}

func ensureSubject(res Result, subject string) {
	subject = strings.TrimSpace(subject)
	if len([]rune(subject)) >= 2 {
		res.Add(models.CategoryPersonName, subject)
	}
}
