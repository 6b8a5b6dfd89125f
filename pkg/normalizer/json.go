package normalizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Strategy names shared by every chain.
const (
	StrategyStrict    = "strict"
	StrategyFenced    = "fenced"
	StrategyBrace     = "brace"
	StrategyRepair    = "repair"
	StrategyHeuristic = "heuristic"
	StrategySuggest   = "suggestions"
	StrategyTemplate  = "template"
)

var (
	errEmptyInput   = errors.New("empty input")
	errNoFence      = errors.New("no fenced code block")
	errNoBraces     = errors.New("no brace-delimited content")
	errNoCandidate  = errors.New("no JSON-like content found")
	errUnrecognized = errors.New("document has no recognizable fields")
)

var fencePattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// Decoder turns a JSON document into T. It returns an error when the
// document does not parse or carries nothing usable.
type Decoder[T any] func(data []byte) (T, error)

// JSONDecoder decodes with encoding/json and then runs accept, if given,
// to reject documents that parse but hold no recognizable fields.
func JSONDecoder[T any](accept func(*T) error) Decoder[T] {
	return func(data []byte) (T, error) {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return v, err
		}
		if accept != nil {
			if err := accept(&v); err != nil {
				return v, err
			}
		}
		return v, nil
	}
}

// RawDecoder accepts any syntactically valid JSON document unchanged.
func RawDecoder(data []byte) (json.RawMessage, error) {
	if !json.Valid(data) {
		var probe any
		// Unmarshal gives a positioned syntax error
		if err := json.Unmarshal(data, &probe); err != nil {
			return nil, err
		}
		return nil, errors.New("invalid JSON")
	}
	return json.RawMessage(bytes.Clone(data)), nil
}

// FencedBlock returns the inner text of the first fenced code block.
func FencedBlock(text string) (string, bool) {
	m := fencePattern.FindStringSubmatch(text)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// BraceSpan returns the greedy span from the first '{' to the last '}'.
func BraceSpan(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// JSONStrategies returns the strict, fenced, brace and repair strategies
// for a decoder, in that order.
func JSONStrategies[T any](decode Decoder[T]) []Strategy[T] {
	return []Strategy[T]{
		StrategyFunc(StrategyStrict, func(text string) Attempt[T] {
			trimmed := strings.TrimSpace(text)
			if trimmed == "" {
				return failed[T](errEmptyInput)
			}
			return decodeAttempt(decode, trimmed, nil)
		}),
		StrategyFunc(StrategyFenced, func(text string) Attempt[T] {
			inner, ok := FencedBlock(text)
			if !ok {
				return failed[T](errNoFence)
			}
			return decodeAttempt(decode, inner, nil)
		}),
		StrategyFunc(StrategyBrace, func(text string) Attempt[T] {
			span, ok := BraceSpan(text)
			if !ok {
				return failed[T](errNoBraces)
			}
			return decodeAttempt(decode, span, nil)
		}),
		StrategyFunc(StrategyRepair, func(text string) Attempt[T] {
			candidate, ok := FencedBlock(text)
			if !ok {
				candidate, ok = BraceSpan(text)
			}
			if !ok {
				return failed[T](errNoCandidate)
			}
			fixed, repairs := Repair(candidate)
			if len(repairs) == 0 {
				return failed[T](errors.New("no repairs applicable"))
			}
			return decodeAttempt(decode, fixed, repairs)
		}),
	}
}

func decodeAttempt[T any](decode Decoder[T], doc string, repairs []string) Attempt[T] {
	v, err := decode([]byte(doc))
	if err != nil {
		return failed[T](fmt.Errorf("decode: %w", err))
	}
	return Attempt[T]{Outcome: Success, Value: v, Repairs: repairs}
}
