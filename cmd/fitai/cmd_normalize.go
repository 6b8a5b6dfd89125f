package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fitai/fitai-server/pkg/normalizer"
)

// normalizeReport is the JSON printed by the normalize command.
type normalizeReport struct {
	Chain      string                  `json:"chain"`
	OK         bool                    `json:"ok"`
	Strategy   string                  `json:"strategy,omitempty"`
	Confidence normalizer.Confidence   `json:"confidence"`
	Defaulted  []string                `json:"defaulted,omitempty"`
	Repairs    []string                `json:"repairs,omitempty"`
	Trace      []normalizer.TraceEntry `json:"trace"`
	Value      any                     `json:"value,omitempty"`
}

func reportOf[T any](chain string, res normalizer.Result[T]) normalizeReport {
	r := normalizeReport{
		Chain:      chain,
		OK:         res.OK,
		Strategy:   res.Strategy,
		Confidence: res.Confidence,
		Defaulted:  res.Defaulted(),
		Repairs:    res.Repairs,
		Trace:      res.Trace,
	}
	if res.OK {
		r.Value = res.Value
	}
	return r
}

var normalizeKinds = []string{"weekly", "suggestions", "meal", "diet", "food", "workout", "json"}

func newNormalizeCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "normalize <kind> [file]",
		Short: "Normalize raw AI output read from a file or stdin",
		Long: `Normalize runs one normalizer chain over raw model output and prints
the typed value together with the strategy trace.

Kinds: ` + strings.Join(normalizeKinds, ", "),
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: normalizeKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 2 {
				file = args[1]
			}
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			report, err := normalize(args[0], string(data), category)
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		},
	}
	cmd.Flags().StringVar(&category, "category", normalizer.CategoryAll, "meal category for kind meal")
	return cmd
}

func normalize(kind, text, category string) (normalizeReport, error) {
	switch kind {
	case "weekly":
		return reportOf(normalizer.ChainWeeklyPlan, normalizer.NormalizeWeeklyPlan(text)), nil
	case "suggestions":
		return reportOf(normalizer.ChainSuggestions, normalizer.NormalizeWorkoutSuggestions(text)), nil
	case "meal":
		return reportOf(normalizer.ChainMealPlan, normalizer.NormalizeMealPlan(text, strings.ToLower(category))), nil
	case "diet":
		return reportOf(normalizer.ChainDietPlan, normalizer.NormalizeDietPlan(text)), nil
	case "food":
		return reportOf(normalizer.ChainFoodAnalysis, normalizer.NormalizeFoodAnalysis(text)), nil
	case "workout":
		return reportOf(normalizer.ChainGeneratedWorkout, normalizer.NormalizeGeneratedWorkout(text)), nil
	case "json":
		_, res := normalizer.ExtractJSON(text)
		return reportOf(normalizer.ChainRawJSON, res), nil
	}
	return normalizeReport{}, fmt.Errorf("unknown kind %q (want one of %s)", kind, strings.Join(normalizeKinds, ", "))
}
