package normalizer

import (
	"encoding/json"

	"github.com/fitai/fitai-server/pkg/types"
)

// Chain names, used in logs and the CLI.
const (
	ChainWeeklyPlan       = "weekly_plan"
	ChainSuggestions      = "workout_suggestions"
	ChainMealPlan         = "meal_plan"
	ChainDietPlan         = "diet_plan"
	ChainFoodAnalysis     = "food_analysis"
	ChainGeneratedWorkout = "generated_workout"
	ChainRawJSON          = "json"
)

var (
	weeklyPlanChain = NewChain(ChainWeeklyPlan,
		append(JSONStrategies(JSONDecoder(acceptWeekly)),
			StrategyFunc(StrategyHeuristic, weeklyHeuristic),
			StrategyFunc(StrategySuggest, suggestionsOnTemplate),
			templateStrategy(WeeklyTemplate, types.Weekdays),
		),
		StrategyTemplate)

	suggestionsChain = NewChain(ChainSuggestions,
		[]Strategy[types.WeeklyWorkoutPlan]{
			StrategyFunc(StrategySuggest, suggestionsOnTemplate),
			templateStrategy(WeeklyTemplate, types.Weekdays),
		},
		StrategyTemplate)

	dietPlanChain = NewChain(ChainDietPlan, JSONStrategies(Decoder[types.DietPlan](decodeDietPlan)))

	foodAnalysisChain = NewChain(ChainFoodAnalysis, foodStrategies())

	generatedWorkoutChain = NewChain(ChainGeneratedWorkout,
		JSONStrategies(JSONDecoder(acceptGenerated)))

	rawJSONChain = NewChain(ChainRawJSON, JSONStrategies(Decoder[json.RawMessage](RawDecoder)))
)

// NormalizeWeeklyPlan reads a weekly workout plan. It always returns a
// value; when nothing can be extracted the static template is returned
// with ConfidenceSynthetic.
func NormalizeWeeklyPlan(text string) Result[types.WeeklyWorkoutPlan] {
	return weeklyPlanChain.Run(text)
}

// NormalizeWorkoutSuggestions applies "Day: A, B" exercise suggestions to
// the weekly template.
func NormalizeWorkoutSuggestions(text string) Result[types.WeeklyWorkoutPlan] {
	return suggestionsChain.Run(text)
}

// NormalizeMealPlan reads meal options. category is a single category
// name or CategoryAll; with a single category only that category of the
// result is populated.
func NormalizeMealPlan(text, category string) Result[types.MealPlan] {
	res := MealPlanChain(category).Run(text)
	res.Value = restrictMealPlan(res.Value, category)
	return res
}

// MealPlanChain builds the meal plan chain for a category.
func MealPlanChain(category string) *Chain[types.MealPlan] {
	template := func() types.MealPlan { return restrictMealPlan(MealTemplate(), category) }
	fields := types.MealCategories
	if key := mealCategoryKey(category); key != "" {
		fields = []string{key}
	}
	return NewChain(ChainMealPlan,
		append(JSONStrategies(JSONDecoder(acceptMealPlan)),
			mealHeuristic(category),
			templateStrategy(template, fields),
		),
		StrategyTemplate)
}

// NormalizeDietPlan reads a generated diet plan. There is no template:
// a failed chain returns OK false.
func NormalizeDietPlan(text string) Result[types.DietPlan] {
	return dietPlanChain.Run(text)
}

// NormalizeFoodAnalysis reads a food analysis response.
func NormalizeFoodAnalysis(text string) Result[types.FoodAnalysis] {
	return foodAnalysisChain.Run(text)
}

// NormalizeGeneratedWorkout reads the weeklyPlan array shape produced by
// the generate-workout prompt.
func NormalizeGeneratedWorkout(text string) Result[types.GeneratedWorkoutPlan] {
	return generatedWorkoutChain.Run(text)
}

// ExtractJSON pulls the first usable JSON document out of text without
// decoding it into a type.
func ExtractJSON(text string) (json.RawMessage, Result[json.RawMessage]) {
	res := rawJSONChain.Run(text)
	return res.Value, res
}
