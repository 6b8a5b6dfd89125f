package normalizer

import (
	"fmt"
	"log/slog"
)

// Strategy is one step of a normalization chain.
type Strategy[T any] interface {
	Name() string
	Apply(text string) Attempt[T]
}

// Chain runs strategies in order until one yields a value.
type Chain[T any] struct {
	name       string
	strategies []Strategy[T]
	synthetic  map[string]bool
}

// NewChain builds a chain. Strategies named in synthetic produce template
// values and are reported with ConfidenceSynthetic.
func NewChain[T any](name string, strategies []Strategy[T], synthetic ...string) *Chain[T] {
	c := &Chain[T]{
		name:       name,
		strategies: strategies,
		synthetic:  map[string]bool{},
	}
	for _, s := range synthetic {
		c.synthetic[s] = true
	}
	return c
}

// Strategies returns the strategy names in execution order.
func (c *Chain[T]) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Run applies the chain to text. It never panics; a strategy that panics
// is recorded as a failure and the chain moves on.
func (c *Chain[T]) Run(text string) Result[T] {
	res := Result[T]{Confidence: ConfidenceNone}

	for _, s := range c.strategies {
		att := c.apply(s, text)
		entry := TraceEntry{Strategy: s.Name(), Outcome: att.Outcome.String()}
		if att.Reason != nil {
			entry.Reason = att.Reason.Error()
		}
		res.Trace = append(res.Trace, entry)

		if att.Outcome == Failure {
			continue
		}

		res.Value = att.Value
		res.OK = true
		res.Strategy = s.Name()
		res.Provenance = att.Fields
		res.Repairs = att.Repairs
		switch {
		case c.synthetic[s.Name()]:
			res.Confidence = ConfidenceSynthetic
		case att.Outcome == LowConfidence:
			res.Confidence = ConfidenceLow
		default:
			res.Confidence = ConfidenceHigh
		}

		logger().Debug("Normalized response",
			"chain", c.name,
			"strategy", res.Strategy,
			"confidence", res.Confidence,
			"attempts", len(res.Trace))
		return res
	}

	logger().Debug("All strategies failed", "chain", c.name, "attempts", len(res.Trace))
	return res
}

// logger resolves the default logger on each call so chains built at
// package init pick up the handler installed later by bootstrap.
func logger() *slog.Logger {
	return slog.Default().With("component", "normalizer")
}

func (c *Chain[T]) apply(s Strategy[T], text string) (att Attempt[T]) {
	defer func() {
		if r := recover(); r != nil {
			att = failed[T](fmt.Errorf("strategy panicked: %v", r))
		}
	}()
	return s.Apply(text)
}

// funcStrategy adapts a plain function to Strategy.
type funcStrategy[T any] struct {
	name string
	fn   func(text string) Attempt[T]
}

func (f funcStrategy[T]) Name() string                 { return f.name }
func (f funcStrategy[T]) Apply(text string) Attempt[T] { return f.fn(text) }

// StrategyFunc wraps fn as a named Strategy.
func StrategyFunc[T any](name string, fn func(text string) Attempt[T]) Strategy[T] {
	return funcStrategy[T]{name: name, fn: fn}
}
