package normalizer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/fitai/fitai-server/pkg/types"
)

// Defaults applied to exercises whose sets and reps are not in the text.
const (
	DefaultSets           = 3
	DefaultReps           = 10
	DefaultCaloriesBurned = "300-400"
	maxExercisesPerDay    = 5
	maxSuggestionsPerDay  = 2
)

var (
	workoutNamePattern = regexp.MustCompile(`(?i)(?:workout|routine|training)[ \t:]+([\w &]+)`)
	musclePattern      = regexp.MustCompile(`(?i)(?:target|muscles|focus)[ \t:]+([\w ,&/]+)`)
	caloriePattern     = regexp.MustCompile(`(?i)(\d+)[ \t-]*(\d*)\s*calories`)
	numberedPattern    = regexp.MustCompile(`(\d+\.[ \t]*[\w -]+)`)
	numberPrefix       = regexp.MustCompile(`^\d+\.\s*`)
	muscleSplit        = regexp.MustCompile(`[,&/]`)

	// dayPatterns match weekday names case-insensitively in the original
	// text so match offsets can slice it directly.
	dayPatterns = func() map[string]*regexp.Regexp {
		m := make(map[string]*regexp.Regexp, len(types.Weekdays))
		for _, d := range types.Weekdays {
			m[d] = regexp.MustCompile(`(?i)` + d)
		}
		return m
	}()

	suggestionPatterns = func() map[string]*regexp.Regexp {
		m := make(map[string]*regexp.Regexp)
		for _, d := range types.Weekdays[:6] {
			m[d] = regexp.MustCompile(`(?i)` + d + `[^:]*:([^\n]+)`)
		}
		return m
	}()
)

var errNoWorkoutDays = errors.New("text does not mention monday, tuesday and wednesday")

func restDay() *types.DayWorkout {
	return &types.DayWorkout{
		WorkoutName:    "Rest Day",
		TargetMuscles:  []string{"None"},
		CaloriesBurned: "0",
		Exercises:      []types.Exercise{},
		Notes:          "Rest day. Focus on recovery.",
	}
}

// weeklyHeuristic builds a weekly plan from prose that walks through the
// days of the week. Fields it cannot find are filled with placeholders
// and marked Defaulted.
func weeklyHeuristic(text string) Attempt[types.WeeklyWorkoutPlan] {
	for _, d := range []string{"monday", "tuesday", "wednesday"} {
		if !dayPatterns[d].MatchString(text) {
			return failed[types.WeeklyWorkoutPlan](errNoWorkoutDays)
		}
	}

	var plan types.WeeklyWorkoutPlan
	fields := map[string]Provenance{}
	for i, day := range types.Weekdays[:6] {
		next := types.Weekdays[i+1]
		if w := extractDayWorkout(text, day, next, fields); w != nil {
			plan.SetDay(day, w)
		}
	}
	plan.Sunday = restDay()
	for _, f := range []string{"workout_name", "target_muscles", "calories_burned", "exercises", "notes"} {
		fields["sunday."+f] = Defaulted
	}

	return Attempt[types.WeeklyWorkoutPlan]{Outcome: LowConfidence, Value: plan, Fields: fields}
}

func extractDayWorkout(text, day, next string, fields map[string]Provenance) *types.DayWorkout {
	loc := dayPatterns[day].FindStringIndex(text)
	if loc == nil {
		return nil
	}
	section := text[loc[0]:]
	if end := dayPatterns[next].FindStringIndex(text[loc[1]:]); end != nil {
		section = text[loc[0] : loc[1]+end[0]]
	}

	mark := func(field string, p Provenance) { fields[day+"."+field] = p }

	name := strings.ToUpper(day[:1]) + day[1:] + " Workout"
	if m := workoutNamePattern.FindStringSubmatch(section); m != nil && strings.TrimSpace(m[1]) != "" {
		name = strings.TrimSpace(m[1])
		mark("workout_name", Extracted)
	} else {
		mark("workout_name", Defaulted)
	}

	firstWord := strings.Fields(name)[0]
	var muscles []string
	if m := musclePattern.FindStringSubmatch(section); m != nil {
		for _, part := range muscleSplit.Split(m[1], -1) {
			if p := strings.TrimSpace(part); p != "" {
				muscles = append(muscles, p)
			}
		}
	}
	if len(muscles) > 0 {
		mark("target_muscles", Extracted)
	} else {
		muscles = []string{firstWord}
		mark("target_muscles", Defaulted)
	}

	calories := DefaultCaloriesBurned
	if m := caloriePattern.FindStringSubmatch(section); m != nil {
		calories = m[1]
		if m[2] != "" {
			calories = m[1] + "-" + m[2]
		}
		mark("calories_burned", Extracted)
	} else {
		mark("calories_burned", Defaulted)
	}

	var exercises []types.Exercise
	for _, raw := range numberedPattern.FindAllString(section, maxExercisesPerDay) {
		exName := strings.TrimSpace(numberPrefix.ReplaceAllString(raw, ""))
		if exName == "" {
			continue
		}
		exercises = append(exercises, defaultExercise(exName, muscles[0]))
	}
	if len(exercises) == 0 {
		exercises = append(exercises, defaultExercise(firstWord, muscles[0]))
		mark("exercises", Defaulted)
	} else {
		mark("exercises", Extracted)
	}
	for i := range exercises {
		prefix := fmt.Sprintf("exercises[%d].", i)
		mark(prefix+"sets", Defaulted)
		mark(prefix+"reps", Defaulted)
		mark(prefix+"instructions", Defaulted)
	}
	mark("notes", Defaulted)

	return &types.DayWorkout{
		WorkoutName:    name,
		TargetMuscles:  muscles,
		CaloriesBurned: calories,
		Exercises:      exercises,
		Notes:          fmt.Sprintf("Focus on proper form for all %s's exercises.", day),
	}
}

func defaultExercise(name, muscle string) types.Exercise {
	return types.Exercise{
		Name:         name,
		Sets:         DefaultSets,
		Reps:         DefaultReps,
		TargetMuscle: muscle,
		Instructions: fmt.Sprintf("Perform %s with proper form", name),
	}
}

// suggestionsOnTemplate reads "Day: Exercise A, Exercise B" lines and
// appends up to two suggestions per day to the weekly template.
func suggestionsOnTemplate(text string) Attempt[types.WeeklyWorkoutPlan] {
	plan := WeeklyTemplate()
	fields := map[string]Provenance{}
	found := false

	for _, day := range types.Weekdays[:6] {
		m := suggestionPatterns[day].FindStringSubmatch(text)
		if m == nil {
			continue
		}
		dw := plan.Day(day)
		if dw == nil {
			continue
		}
		muscle := "Multiple"
		if len(dw.TargetMuscles) > 0 && dw.TargetMuscles[0] != "" {
			muscle = dw.TargetMuscles[0]
		}

		parts := strings.Split(m[1], ",")
		for i := 0; i < len(parts) && i < maxSuggestionsPerDay; i++ {
			name := strings.Trim(parts[i], " \t\r*")
			if name == "" {
				continue
			}
			idx := len(dw.Exercises)
			dw.Exercises = append(dw.Exercises, defaultExercise(name, muscle))
			prefix := fmt.Sprintf("%s.exercises[%d].", day, idx)
			fields[prefix+"name"] = Extracted
			fields[prefix+"sets"] = Defaulted
			fields[prefix+"reps"] = Defaulted
			fields[prefix+"target_muscle"] = Defaulted
			fields[prefix+"instructions"] = Defaulted
			found = true
		}
	}

	if !found {
		return failed[types.WeeklyWorkoutPlan](errors.New("no day suggestions found"))
	}
	return Attempt[types.WeeklyWorkoutPlan]{Outcome: LowConfidence, Value: plan, Fields: fields}
}

func acceptWeekly(p *types.WeeklyWorkoutPlan) error {
	if p.IsEmpty() {
		return errUnrecognized
	}
	return nil
}

func acceptGenerated(p *types.GeneratedWorkoutPlan) error {
	if len(p.WeeklyPlan) == 0 {
		return errUnrecognized
	}
	return nil
}
