package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitai/fitai-server/pkg/normalizer"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNormalize_Stdin(t *testing.T) {
	out, err := run(t, "Sure! ```json\n{\"calories\": 250, \"protein\": 10}\n```", "normalize", "json")
	require.NoError(t, err)

	var report normalizeReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.OK)
	assert.Equal(t, normalizer.ChainRawJSON, report.Chain)
	assert.Equal(t, normalizer.StrategyFenced, report.Strategy)
	assert.NotEmpty(t, report.Trace)
}

func TestNormalize_WeeklyTemplateFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reply.txt")
	require.NoError(t, os.WriteFile(path, []byte("I can't help with that."), 0644))

	out, err := run(t, "", "normalize", "weekly", path)
	require.NoError(t, err)

	var report normalizeReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, normalizer.StrategyTemplate, report.Strategy)
	assert.Equal(t, normalizer.ConfidenceSynthetic, report.Confidence)
}

func TestNormalize_UnknownKind(t *testing.T) {
	_, err := run(t, "{}", "normalize", "dessert")
	assert.Error(t, err)
}

func TestFallback(t *testing.T) {
	out, err := run(t, "", "fallback", "--topic", "how", "much", "protein", "do", "I", "need?")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "["))
	assert.NotContains(t, out, "[default]")
}

func TestExercise(t *testing.T) {
	out, err := run(t, "", "exercise", "bb", "bench", "press")
	require.NoError(t, err)
	assert.Contains(t, out, "Bench Press")
	assert.Contains(t, out, "chest")

	_, err = run(t, "", "exercise", "zzzz", "qqqq")
	assert.Error(t, err)
}

func TestFitExportAndInspect(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "monday.fit")

	plan := `{"monday": {"workout_name": "Chest and Triceps", "target_muscles": ["Chest"], "calories_burned": "300-350",
		"exercises": [{"name": "Push-ups", "sets": 3, "reps": 10}, {"name": "Bench Press", "sets": 2, "reps": 8}]}}`

	out, err := run(t, plan, "fit", "export", "--day", "monday", "--start", "2026-03-02T18:00:00Z", "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Chest and Triceps")

	out, err = run(t, "", "fit", "inspect", "-v", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Session:")
	assert.Contains(t, out, "push_up")
	assert.Contains(t, out, "Messages:")
}

func TestFitExport_RestDay(t *testing.T) {
	_, err := run(t, `{"monday": {"workout_name": "Rest Day", "exercises": []}}`,
		"fit", "export", "--day", "monday", "-o", filepath.Join(t.TempDir(), "x.fit"))
	assert.Error(t, err)
}
