package normalizer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepair(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		repairs []string
	}{
		{
			name:    "trailing commas",
			input:   `{"a": [1, 2,], "b": 3,}`,
			want:    `{"a": [1, 2], "b": 3}`,
			repairs: []string{RepairTrailingComma},
		},
		{
			name:    "comma inside string is kept",
			input:   `{"a": "x,}"}`,
			want:    `{"a": "x,}"}`,
			repairs: nil,
		},
		{
			name:    "bare keys",
			input:   `{name: "Squat", sets: 3}`,
			want:    `{"name": "Squat", "sets": 3}`,
			repairs: []string{RepairBareKey},
		},
		{
			name:    "smart quotes",
			input:   "{“a”: “b”}",
			want:    `{"a": "b"}`,
			repairs: []string{RepairSmartQuotes},
		},
		{
			name:    "python booleans",
			input:   `{"done": True, "skip": False}`,
			want:    `{"done": true, "skip": false}`,
			repairs: []string{RepairBooleanCase},
		},
		{
			name:    "bare value",
			input:   `{"focus": upper body, "n": 5 }`,
			want:    `{"focus": "upper body", "n": 5 }`,
			repairs: []string{RepairBareValue},
		},
		{
			name:    "raw newline in string",
			input:   "{\"notes\": \"line one\n   line two\"}",
			want:    `{"notes": "line one line two"}`,
			repairs: []string{RepairNewlineInString},
		},
		{
			name:    "escaped newline in string",
			input:   `{"notes": "line one\nline two"}`,
			want:    `{"notes": "line one line two"}`,
			repairs: []string{RepairNewlineInString},
		},
		{
			name:    "fence markers",
			input:   "```json\n{\"a\": 1}\n```",
			want:    `{"a": 1}`,
			repairs: []string{RepairStripFence},
		},
		{
			name:    "nested objects untouched",
			input:   `{"a": {"b": [null, -1.5e3]}}`,
			want:    `{"a": {"b": [null, -1.5e3]}}`,
			repairs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, repairs := Repair(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.repairs, repairs)
			assert.True(t, json.Valid([]byte(got)), "repaired output should be valid JSON: %s", got)
		})
	}
}

func TestFencedBlockAndBraceSpan(t *testing.T) {
	inner, ok := FencedBlock("text\n```json\n{\"a\":1}\n```\nmore")
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, inner)

	_, ok = FencedBlock("no fences here")
	assert.False(t, ok)

	span, ok := BraceSpan(`x {"a": {"b": 1}} y`)
	assert.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}}`, span)

	_, ok = BraceSpan("} backwards {")
	assert.False(t, ok)
}
