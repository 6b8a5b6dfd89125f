// Package normalizer turns unstructured AI output into typed plan records.
//
// Each record type is produced by a Chain: an ordered list of strategies
// (strict parse, fenced block, brace scan, textual repair, heuristic
// extraction, static template). Every strategy reports a tagged Attempt,
// and the chain returns the first usable one together with a trace of
// what was tried, an overall Confidence and per-field Provenance.
package normalizer

import (
	"sort"
)

// Outcome tags the result of a single strategy attempt.
type Outcome int

const (
	Failure Outcome = iota
	LowConfidence
	Success
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case LowConfidence:
		return "low_confidence"
	}
	return "failure"
}

// Confidence summarizes how trustworthy a normalized value is.
type Confidence string

const (
	ConfidenceHigh      Confidence = "high"
	ConfidenceLow       Confidence = "low"
	ConfidenceSynthetic Confidence = "synthetic"
	ConfidenceNone      Confidence = "none"
)

// Provenance records where a single field value came from.
type Provenance string

const (
	Extracted Provenance = "extracted"
	Defaulted Provenance = "defaulted"
)

// Attempt is what a strategy returns.
type Attempt[T any] struct {
	Outcome Outcome
	Value   T
	// Fields lists field paths whose provenance differs from the
	// strategy default (Extracted for parses, Defaulted for templates).
	Fields  map[string]Provenance
	Repairs []string
	Reason  error
}

func failed[T any](reason error) Attempt[T] {
	return Attempt[T]{Outcome: Failure, Reason: reason}
}

// TraceEntry is one row of the chain's attempt log.
type TraceEntry struct {
	Strategy string `json:"strategy"`
	Outcome  string `json:"outcome"`
	Reason   string `json:"reason,omitempty"`
}

// Result is the output of a Chain.
type Result[T any] struct {
	Value      T
	OK         bool
	Confidence Confidence
	Strategy   string
	Provenance map[string]Provenance
	Repairs    []string
	Trace      []TraceEntry
}

// FieldProvenance reports the provenance of a field path. Paths not
// listed explicitly inherit from the overall confidence.
func (r Result[T]) FieldProvenance(path string) Provenance {
	if p, ok := r.Provenance[path]; ok {
		return p
	}
	if r.Confidence == ConfidenceSynthetic || !r.OK {
		return Defaulted
	}
	return Extracted
}

// Defaulted returns the sorted field paths that were filled with
// placeholder values rather than read from the input.
func (r Result[T]) Defaulted() []string {
	var out []string
	for path, p := range r.Provenance {
		if p == Defaulted {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// Synthetic reports whether the value came from a static template.
func (r Result[T]) Synthetic() bool {
	return r.Confidence == ConfidenceSynthetic
}
