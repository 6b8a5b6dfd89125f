package normalizer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fitai/fitai-server/pkg/types"
)

// Placeholder nutrition for meal options whose text carries no numbers.
const (
	DefaultMealCalories = 350
	DefaultMealProtein  = 15
	DefaultMealCarbs    = 30
	DefaultMealFat      = 12
)

// CategoryAll requests every meal category.
const CategoryAll = "all"

var (
	mealItemSplit   = regexp.MustCompile(`\n\d+\.`)
	mealCalories    = regexp.MustCompile(`(?i)(?:calories|cals|kcal|cal)(?:\s*:|:?\s+)(\d+)`)
	mealProtein     = regexp.MustCompile(`(?i)protein(?:\s*:|:?\s+)(\d+)`)
	mealCarbs       = regexp.MustCompile(`(?i)(?:carbs|carbohydrates)(?:\s*:|:?\s+)(\d+)`)
	mealFat         = regexp.MustCompile(`(?i)fat(?:\s*:|:?\s+)(\d+)`)
	nutritionLabels = regexp.MustCompile(`(?i)(?:calories|protein|carbs|carbohydrates|fat):.+`)
	junkCalories    = regexp.MustCompile(`^\d+\s*(?:kcal|cal|calories)$`)
	junkGrams       = regexp.MustCompile(`^\d+g$`)
	junkNote        = regexp.MustCompile(`(?i)^note:?$`)
)

// mealHeaders maps plan keys to the header word searched for in text.
var mealHeaders = map[string]string{
	"breakfast": "Breakfast",
	"lunch":     "Lunch",
	"dinner":    "Dinner",
	"snacks":    "Snack",
}

var mealHeaderPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(mealHeaders))
	for _, h := range mealHeaders {
		m[h] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(h))
	}
	return m
}()

var errNoMeals = errors.New("no meal options found")

// mealSection returns the text following the first "<header>...:" or
// "<header>...\n" up to the next bold heading line.
func mealSection(text, header string) (string, bool) {
	loc := mealHeaderPatterns[header].FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	cut := strings.IndexAny(rest, ":\n")
	if cut == -1 {
		return "", false
	}
	body := rest[cut+1:]
	if end := strings.Index(body, "\n**"); end != -1 {
		body = body[:end]
	}
	return body, true
}

func isJunkMealName(name string) bool {
	return strings.EqualFold(name, "approx") ||
		junkCalories.MatchString(name) ||
		junkGrams.MatchString(name) ||
		junkNote.MatchString(name) ||
		len(name) < 3
}

// extractMealOptions parses numbered meal items out of a category section.
// Provenance paths are reported relative to the option, e.g. "[0].calories".
func extractMealOptions(section string) ([]types.MealOption, map[string]Provenance) {
	var opts []types.MealOption
	fields := map[string]Provenance{}

	for _, item := range mealItemSplit.Split("\n"+section, -1) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		lines := strings.Split(strings.ReplaceAll(item, "\r\n", "\n"), "\n")
		name := strings.TrimSpace(strings.ReplaceAll(lines[0], "*", ""))
		if isJunkMealName(name) {
			continue
		}

		idx := len(opts)
		mark := func(field string, p Provenance) { fields[fmt.Sprintf("[%d].%s", idx, field)] = p }
		number := func(re *regexp.Regexp, field string, def int) int {
			if m := re.FindStringSubmatch(item); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					mark(field, Extracted)
					return n
				}
			}
			mark(field, Defaulted)
			return def
		}

		opt := types.MealOption{
			Name:     name,
			Calories: number(mealCalories, "calories", DefaultMealCalories),
			Protein:  number(mealProtein, "protein", DefaultMealProtein),
			Carbs:    number(mealCarbs, "carbs", DefaultMealCarbs),
			Fat:      number(mealFat, "fat", DefaultMealFat),
		}
		if len(lines) > 1 {
			opt.Description = strings.TrimSpace(nutritionLabels.ReplaceAllString(strings.Join(lines[1:], " "), ""))
		}
		if opt.Description != "" {
			mark("description", Extracted)
		} else {
			opt.Description = name + " with common ingredients"
			mark("description", Defaulted)
		}
		opts = append(opts, opt)
	}
	return opts, fields
}

// mealHeuristic returns a strategy that scrapes numbered meal lists from
// prose. With a single category the whole text is scanned when no header
// is found; with CategoryAll each category needs its own header.
func mealHeuristic(category string) Strategy[types.MealPlan] {
	return StrategyFunc(StrategyHeuristic, func(text string) Attempt[types.MealPlan] {
		keys := types.MealCategories
		if key := mealCategoryKey(category); key != "" {
			keys = []string{key}
		}

		var plan types.MealPlan
		fields := map[string]Provenance{}
		found := false
		for _, key := range keys {
			section, ok := mealSection(text, mealHeaders[key])
			if !ok {
				if len(keys) > 1 {
					continue
				}
				section = text
			}
			if !mealItemSplit.MatchString("\n" + section) {
				continue
			}
			opts, optFields := extractMealOptions(section)
			if len(opts) == 0 {
				continue
			}
			plan.SetCategory(key, opts)
			for path, p := range optFields {
				fields[key+path] = p
			}
			found = true
		}
		if !found {
			return failed[types.MealPlan](errNoMeals)
		}
		return Attempt[types.MealPlan]{Outcome: LowConfidence, Value: plan, Fields: fields}
	})
}

// mealCategoryKey maps a requested category to a MealPlan key. It returns
// "" for CategoryAll and unknown names.
func mealCategoryKey(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "breakfast":
		return "breakfast"
	case "lunch":
		return "lunch"
	case "dinner":
		return "dinner"
	case "snack", "snacks":
		return "snacks"
	}
	return ""
}

// restrictMealPlan keeps only the requested category.
func restrictMealPlan(plan types.MealPlan, category string) types.MealPlan {
	key := mealCategoryKey(category)
	if key == "" {
		return plan
	}
	var out types.MealPlan
	out.SetCategory(key, plan.Category(key))
	return out
}

func acceptMealPlan(p *types.MealPlan) error {
	for _, c := range types.MealCategories {
		if len(p.Category(c)) > 0 {
			return nil
		}
	}
	return errUnrecognized
}
