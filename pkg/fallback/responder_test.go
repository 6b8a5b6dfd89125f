package fallback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitai/fitai-server/pkg/types"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		query string
		topic string
		ok    bool
	}{
		{"Can you give me a workout?", "workout", true},
		{"What should I EAT today", "nutrition", true},
		// first match wins: "exercise" beats "diet"
		{"diet and exercise tips", "workout", true},
		{"how do I lose weight", "weight_loss", true},
		{"I want to get strong", "muscle", true},
		{"make me a schedule", "schedule", true},
		{"is running good?", "cardio", true},
		{"best protein shake", "protein", true},
		{"hello", "greeting", true},
		{"", "greeting", true},
		// only a truly empty query is a greeting
		{"   ", TopicDefault, false},
		// substring matching: "this" contains "hi"
		{"this?", "greeting", true},
		{"xyz", TopicDefault, false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rule, ok := Match(tt.query)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.topic, rule.Topic)
			assert.NotEmpty(t, rule.Response)
		})
	}
}

func TestRespond(t *testing.T) {
	msg := Respond("What about cardio?")
	assert.Equal(t, types.RoleAssistant, msg.Role)
	assert.True(t, strings.HasPrefix(msg.Content, "Cardio training is excellent"))

	msg = Respond("xyz")
	assert.True(t, strings.HasPrefix(msg.Content, "I'm your AI fitness trainer"))

	msg = Respond("weekly schedule please")
	assert.Contains(t, msg.Content, "\n- Monday: Upper body strength training")
}

func TestParse(t *testing.T) {
	r, err := Parse([]byte("rules:\n  - topic: yoga\n    keywords: [YOGA]\n    response: Namaste\ndefault: Hello\n"))
	require.NoError(t, err)

	assert.Equal(t, "Namaste", r.Respond("I like Yoga").Content)
	assert.Equal(t, "Hello", r.Respond("").Content)

	_, err = Parse([]byte("rules: []\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("rules: [unclosed"))
	assert.Error(t, err)
}
