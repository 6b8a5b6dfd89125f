package normalizer

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/fitai/fitai-server/pkg/types"
)

//go:embed templates.yaml
var templatesYAML []byte

type templateFile struct {
	WeeklyPlan types.WeeklyWorkoutPlan `yaml:"weekly_plan"`
	MealPlan   types.MealPlan          `yaml:"meal_plan"`
}

var templates templateFile

func init() {
	if err := yaml.Unmarshal(templatesYAML, &templates); err != nil {
		panic(fmt.Sprintf("normalizer: invalid embedded templates: %v", err))
	}
}

// WeeklyTemplate returns a fresh copy of the fallback weekly workout plan.
func WeeklyTemplate() types.WeeklyWorkoutPlan {
	return templates.WeeklyPlan.Clone()
}

// MealTemplate returns a fresh copy of the fallback meal plan.
func MealTemplate() types.MealPlan {
	var out types.MealPlan
	for _, c := range types.MealCategories {
		out.SetCategory(c, append([]types.MealOption(nil), templates.MealPlan.Category(c)...))
	}
	return out
}

// templateStrategy always succeeds with value(). The listed top-level
// fields are reported as Defaulted.
func templateStrategy[T any](value func() T, fields []string) Strategy[T] {
	return StrategyFunc(StrategyTemplate, func(string) Attempt[T] {
		prov := make(map[string]Provenance, len(fields))
		for _, f := range fields {
			prov[f] = Defaulted
		}
		return Attempt[T]{Outcome: Success, Value: value(), Fields: prov}
	})
}
