package types

// Weekdays in plan order. Keys match the weekly plan JSON fields.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Exercise is a single movement within a day's workout.
type Exercise struct {
	Name         string `json:"name" firestore:"name" yaml:"name"`
	Sets         int    `json:"sets" firestore:"sets" yaml:"sets"`
	Reps         int    `json:"reps" firestore:"reps" yaml:"reps"`
	Weight       string `json:"weight,omitempty" firestore:"weight,omitempty" yaml:"weight,omitempty"`
	TargetMuscle string `json:"target_muscle,omitempty" firestore:"target_muscle,omitempty" yaml:"target_muscle,omitempty"`
	Instructions string `json:"instructions,omitempty" firestore:"instructions,omitempty" yaml:"instructions,omitempty"`
}

// DayWorkout is the workout scheduled for one weekday.
type DayWorkout struct {
	WorkoutName    string     `json:"workout_name" firestore:"workout_name" yaml:"workout_name"`
	TargetMuscles  []string   `json:"target_muscles" firestore:"target_muscles" yaml:"target_muscles"`
	CaloriesBurned string     `json:"calories_burned" firestore:"calories_burned" yaml:"calories_burned"`
	Exercises      []Exercise `json:"exercises" firestore:"exercises" yaml:"exercises"`
	Notes          string     `json:"notes,omitempty" firestore:"notes,omitempty" yaml:"notes,omitempty"`
}

// WeeklyWorkoutPlan maps each weekday to an optional workout.
type WeeklyWorkoutPlan struct {
	Monday    *DayWorkout `json:"monday" firestore:"monday" yaml:"monday"`
	Tuesday   *DayWorkout `json:"tuesday" firestore:"tuesday" yaml:"tuesday"`
	Wednesday *DayWorkout `json:"wednesday" firestore:"wednesday" yaml:"wednesday"`
	Thursday  *DayWorkout `json:"thursday" firestore:"thursday" yaml:"thursday"`
	Friday    *DayWorkout `json:"friday" firestore:"friday" yaml:"friday"`
	Saturday  *DayWorkout `json:"saturday" firestore:"saturday" yaml:"saturday"`
	Sunday    *DayWorkout `json:"sunday" firestore:"sunday" yaml:"sunday"`
}

// Day returns the workout for a lowercase weekday name, or nil.
func (p *WeeklyWorkoutPlan) Day(day string) *DayWorkout {
	if p == nil {
		return nil
	}
	switch day {
	case "monday":
		return p.Monday
	case "tuesday":
		return p.Tuesday
	case "wednesday":
		return p.Wednesday
	case "thursday":
		return p.Thursday
	case "friday":
		return p.Friday
	case "saturday":
		return p.Saturday
	case "sunday":
		return p.Sunday
	}
	return nil
}

// SetDay assigns the workout for a lowercase weekday name. Unknown names are ignored.
func (p *WeeklyWorkoutPlan) SetDay(day string, w *DayWorkout) {
	switch day {
	case "monday":
		p.Monday = w
	case "tuesday":
		p.Tuesday = w
	case "wednesday":
		p.Wednesday = w
	case "thursday":
		p.Thursday = w
	case "friday":
		p.Friday = w
	case "saturday":
		p.Saturday = w
	case "sunday":
		p.Sunday = w
	}
}

// IsEmpty reports whether no day has a workout.
func (p *WeeklyWorkoutPlan) IsEmpty() bool {
	for _, d := range Weekdays {
		if p.Day(d) != nil {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so templates can be mutated safely.
func (p WeeklyWorkoutPlan) Clone() WeeklyWorkoutPlan {
	var out WeeklyWorkoutPlan
	for _, d := range Weekdays {
		src := p.Day(d)
		if src == nil {
			continue
		}
		cp := *src
		if src.TargetMuscles != nil {
			cp.TargetMuscles = make([]string, len(src.TargetMuscles))
			copy(cp.TargetMuscles, src.TargetMuscles)
		}
		if src.Exercises != nil {
			cp.Exercises = make([]Exercise, len(src.Exercises))
			copy(cp.Exercises, src.Exercises)
		}
		out.SetDay(d, &cp)
	}
	return out
}

// GeneratedExercise is an exercise in the generate-workout response shape.
// Reps is left raw because models return either a count or a duration.
type GeneratedExercise struct {
	Name  string `json:"name"`
	Sets  int    `json:"sets"`
	Reps  any    `json:"reps"`
	Rest  string `json:"rest,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// GeneratedDay is one entry of the generate-workout weekly plan.
type GeneratedDay struct {
	Day       string              `json:"day"`
	Focus     string              `json:"focus"`
	Warmup    string              `json:"warmup,omitempty"`
	Exercises []GeneratedExercise `json:"exercises"`
	Cooldown  string              `json:"cooldown,omitempty"`
	Duration  string              `json:"duration,omitempty"`
}

// GeneratedWorkoutPlan is the response shape requested by the workout prompt.
type GeneratedWorkoutPlan struct {
	WeeklyPlan []GeneratedDay `json:"weeklyPlan"`
}

// Nutrition holds macro values for a meal or food.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// Meal is one meal in a generated diet plan.
type Meal struct {
	Name        string    `json:"name"`
	Ingredients []string  `json:"ingredients"`
	Preparation string    `json:"preparation,omitempty"`
	Nutrition   Nutrition `json:"nutrition"`
	Benefits    string    `json:"benefits,omitempty"`
}

// DietPlan is a full day's meal plan.
type DietPlan struct {
	Breakfast *Meal  `json:"breakfast"`
	Lunch     *Meal  `json:"lunch"`
	Dinner    *Meal  `json:"dinner"`
	Snacks    []Meal `json:"snacks"`
}

// MealOption is a suggested meal within a category.
type MealOption struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Calories    int    `json:"calories" yaml:"calories"`
	Protein     int    `json:"protein" yaml:"protein"`
	Carbs       int    `json:"carbs" yaml:"carbs"`
	Fat         int    `json:"fat" yaml:"fat"`
	HealthScore *int   `json:"healthScore,omitempty" yaml:"healthScore,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
}

// MealPlan groups meal options per category.
type MealPlan struct {
	Breakfast []MealOption `json:"breakfast" yaml:"breakfast"`
	Lunch     []MealOption `json:"lunch" yaml:"lunch"`
	Dinner    []MealOption `json:"dinner" yaml:"dinner"`
	Snacks    []MealOption `json:"snacks" yaml:"snacks"`
}

// MealCategories lists the category keys of a MealPlan in display order.
var MealCategories = []string{"breakfast", "lunch", "dinner", "snacks"}

// Category returns the options for a category key.
func (m *MealPlan) Category(key string) []MealOption {
	switch key {
	case "breakfast":
		return m.Breakfast
	case "lunch":
		return m.Lunch
	case "dinner":
		return m.Dinner
	case "snacks", "snack":
		return m.Snacks
	}
	return nil
}

// SetCategory replaces the options for a category key.
func (m *MealPlan) SetCategory(key string, opts []MealOption) {
	switch key {
	case "breakfast":
		m.Breakfast = opts
	case "lunch":
		m.Lunch = opts
	case "dinner":
		m.Dinner = opts
	case "snacks", "snack":
		m.Snacks = opts
	}
}

// FoodAnalysis is the normalized result of a food analysis request.
type FoodAnalysis struct {
	Food         string    `json:"food"`
	Nutrition    Nutrition `json:"nutrition"`
	HealthScore  float64   `json:"healthScore"`
	HealthBadges []string  `json:"healthBadges"`
	Analysis     string    `json:"analysis"`
}

// ChatMessage roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single turn in a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
