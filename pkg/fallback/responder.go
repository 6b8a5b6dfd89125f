// Package fallback answers chat messages from a fixed keyword table when
// the AI service is unavailable.
package fallback

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fitai/fitai-server/pkg/types"
)

//go:embed rules.yaml
var rulesYAML []byte

// TopicDefault is reported when no rule matched.
const TopicDefault = "default"

// Rule maps keyword substrings to a canned response.
type Rule struct {
	Topic      string   `yaml:"topic"`
	Keywords   []string `yaml:"keywords"`
	MatchEmpty bool     `yaml:"match_empty"`
	Response   string   `yaml:"response"`
}

// Matches reports whether the lowercased query contains any keyword.
func (r Rule) Matches(lowerQuery string) bool {
	if lowerQuery == "" {
		return r.MatchEmpty
	}
	for _, kw := range r.Keywords {
		if strings.Contains(lowerQuery, kw) {
			return true
		}
	}
	return false
}

// Responder holds an ordered rule table.
type Responder struct {
	Rules   []Rule `yaml:"rules"`
	Default string `yaml:"default"`
}

// Parse loads a rule table from YAML.
func Parse(data []byte) (*Responder, error) {
	var r Responder
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse fallback rules: %w", err)
	}
	if r.Default == "" {
		return nil, fmt.Errorf("parse fallback rules: missing default response")
	}
	for i := range r.Rules {
		for j, kw := range r.Rules[i].Keywords {
			r.Rules[i].Keywords[j] = strings.ToLower(kw)
		}
	}
	return &r, nil
}

var builtin = func() *Responder {
	r, err := Parse(rulesYAML)
	if err != nil {
		panic(err)
	}
	return r
}()

// Default returns the embedded rule table.
func Default() *Responder {
	return builtin
}

// Match returns the first rule matching query.
func (r *Responder) Match(query string) (Rule, bool) {
	q := strings.ToLower(query)
	for _, rule := range r.Rules {
		if rule.Matches(q) {
			return rule, true
		}
	}
	return Rule{Topic: TopicDefault, Response: r.Default}, false
}

// Respond answers query as the assistant.
func (r *Responder) Respond(query string) types.ChatMessage {
	rule, _ := r.Match(query)
	return types.ChatMessage{Role: types.RoleAssistant, Content: rule.Response}
}

// Match runs the embedded table.
func Match(query string) (Rule, bool) {
	return builtin.Match(query)
}

// Respond answers query from the embedded table.
func Respond(query string) types.ChatMessage {
	return builtin.Respond(query)
}
