package normalizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/fitai/fitai-server/pkg/types"
)

var leadingNumber = regexp.MustCompile(`^-?\d+(?:\.\d+)?`)

// number decodes a JSON number or a string starting with one, such as
// "25g" or "350 kcal". A present but unreadable value decodes as zero
// with ok false.
type number struct {
	value float64
	ok    bool
}

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if m := leadingNumber.FindString(strings.TrimSpace(s)); m != "" {
			n.value, _ = strconv.ParseFloat(m, 64)
			n.ok = true
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	n.value, n.ok = f, true
	return nil
}

type looseNutrition struct {
	Calories      number `json:"calories"`
	Protein       number `json:"protein"`
	Carbs         number `json:"carbs"`
	Carbohydrates number `json:"carbohydrates"`
	Fats          number `json:"fats"`
	Fat           number `json:"fat"`
	HealthScore   number `json:"healthScore"`
	HealthScoreSn number `json:"health_score"`
}

func (l looseNutrition) nutrition() types.Nutrition {
	return types.Nutrition{
		Calories: l.Calories.value,
		Protein:  l.Protein.value,
		Carbs:    firstNumber(l.Carbs, l.Carbohydrates).value,
		Fats:     firstNumber(l.Fats, l.Fat).value,
	}
}

func (l looseNutrition) hasValues() bool {
	return l.Calories.ok || l.Protein.ok || l.Carbs.ok || l.Carbohydrates.ok || l.Fats.ok || l.Fat.ok
}

func firstNumber(ns ...number) number {
	for _, n := range ns {
		if n.ok {
			return n
		}
	}
	return number{}
}

type looseFood struct {
	Food            string          `json:"food"`
	Name            string          `json:"name"`
	FoodName        string          `json:"foodName"`
	Nutrition       *looseNutrition `json:"nutrition"`
	NutritionalInfo *looseNutrition `json:"nutritional_information"`
	HealthScore     number          `json:"healthScore"`
	HealthScoreSn   number          `json:"health_score"`
	HealthBadges    []string        `json:"healthBadges"`
	HealthBadgesSn  []string        `json:"health_badges"`
	Analysis        json.RawMessage `json:"analysis"`
}

var errNoFoodFields = errors.New("document has no food or nutrition fields")

// decodeFoodAnalysis reads the food analysis shape leniently: snake_case
// keys, numbers given as strings and a health score nested under the
// analysis or nutritional_information objects are all accepted.
func decodeFoodAnalysis(data []byte) (foodDecoded, error) {
	var lf looseFood
	if err := json.Unmarshal(data, &lf); err != nil {
		return foodDecoded{}, err
	}

	out := foodDecoded{fields: map[string]Provenance{}}
	mark := func(field string, ok bool) {
		if ok {
			out.fields[field] = Extracted
		} else {
			out.fields[field] = Defaulted
		}
	}

	out.value.Food = firstString(lf.Food, lf.Name, lf.FoodName)
	mark("food", out.value.Food != "")

	nutr := lf.Nutrition
	if nutr == nil || !nutr.hasValues() {
		nutr = lf.NutritionalInfo
	}
	if nutr != nil {
		out.value.Nutrition = nutr.nutrition()
	}
	mark("nutrition", nutr != nil && nutr.hasValues())

	score := firstNumber(lf.HealthScore, lf.HealthScoreSn)
	var analysisText string
	var nested looseNutrition
	if len(lf.Analysis) > 0 {
		if err := json.Unmarshal(lf.Analysis, &analysisText); err != nil {
			analysisText = ""
			_ = json.Unmarshal(lf.Analysis, &nested)
			var summary struct {
				Summary string `json:"summary"`
				Text    string `json:"text"`
			}
			if json.Unmarshal(lf.Analysis, &summary) == nil {
				analysisText = firstString(summary.Summary, summary.Text)
			}
		}
	}
	if !score.ok {
		score = firstNumber(nested.HealthScore, nested.HealthScoreSn)
	}
	if !score.ok && lf.NutritionalInfo != nil {
		score = firstNumber(lf.NutritionalInfo.HealthScore, lf.NutritionalInfo.HealthScoreSn)
	}
	out.value.HealthScore = clampScore(score.value)
	mark("healthScore", score.ok)

	out.value.HealthBadges = lf.HealthBadges
	if len(out.value.HealthBadges) == 0 {
		out.value.HealthBadges = lf.HealthBadgesSn
	}
	if out.value.HealthBadges == nil {
		out.value.HealthBadges = []string{}
	}
	mark("healthBadges", len(out.value.HealthBadges) > 0)

	out.value.Analysis = analysisText
	mark("analysis", analysisText != "")

	if out.value.Food == "" && !(nutr != nil && nutr.hasValues()) && !score.ok {
		return foodDecoded{}, errNoFoodFields
	}
	return out, nil
}

// foodDecoded carries per-field provenance out of the decoder.
type foodDecoded struct {
	value  types.FoodAnalysis
	fields map[string]Provenance
}

func clampScore(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

func firstString(ss ...string) string {
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// foodStrategies wraps the JSON strategies so the decoder's provenance
// ends up on the attempt.
func foodStrategies() []Strategy[types.FoodAnalysis] {
	inner := JSONStrategies(Decoder[foodDecoded](decodeFoodAnalysis))
	out := make([]Strategy[types.FoodAnalysis], len(inner))
	for i, s := range inner {
		s := s
		out[i] = StrategyFunc(s.Name(), func(text string) Attempt[types.FoodAnalysis] {
			att := s.Apply(text)
			if att.Outcome == Failure {
				return failed[types.FoodAnalysis](att.Reason)
			}
			return Attempt[types.FoodAnalysis]{
				Outcome: att.Outcome,
				Value:   att.Value.value,
				Fields:  att.Value.fields,
				Repairs: att.Repairs,
			}
		})
	}
	return out
}

type looseMeal struct {
	Name        string          `json:"name"`
	Ingredients json.RawMessage `json:"ingredients"`
	Preparation string          `json:"preparation"`
	Nutrition   looseNutrition  `json:"nutrition"`
	Benefits    string          `json:"benefits"`
}

func (m *looseMeal) meal() *types.Meal {
	if m == nil {
		return nil
	}
	return &types.Meal{
		Name:        m.Name,
		Ingredients: stringList(m.Ingredients),
		Preparation: m.Preparation,
		Nutrition:   m.Nutrition.nutrition(),
		Benefits:    m.Benefits,
	}
}

// stringList accepts either a JSON array of strings or a single
// comma-separated string.
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return list
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		out := []string{}
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return []string{}
}

// decodeDietPlan accepts snacks as either a single meal object or a list.
func decodeDietPlan(data []byte) (types.DietPlan, error) {
	var raw struct {
		Breakfast *looseMeal      `json:"breakfast"`
		Lunch     *looseMeal      `json:"lunch"`
		Dinner    *looseMeal      `json:"dinner"`
		Snacks    json.RawMessage `json:"snacks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.DietPlan{}, err
	}

	plan := types.DietPlan{
		Breakfast: raw.Breakfast.meal(),
		Lunch:     raw.Lunch.meal(),
		Dinner:    raw.Dinner.meal(),
		Snacks:    []types.Meal{},
	}
	if len(raw.Snacks) > 0 {
		var list []looseMeal
		if err := json.Unmarshal(raw.Snacks, &list); err == nil {
			for i := range list {
				plan.Snacks = append(plan.Snacks, *list[i].meal())
			}
		} else {
			var one looseMeal
			if err := json.Unmarshal(raw.Snacks, &one); err == nil && one.Name != "" {
				plan.Snacks = append(plan.Snacks, *one.meal())
			}
		}
	}

	if plan.Breakfast == nil && plan.Lunch == nil && plan.Dinner == nil && len(plan.Snacks) == 0 {
		return types.DietPlan{}, errUnrecognized
	}
	return plan, nil
}
