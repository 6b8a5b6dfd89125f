package types

import "time"

// UserProfile is the per-user document stored at users/{uid}.
type UserProfile struct {
	UserID             string     `json:"uid" firestore:"-"`
	DisplayName        string     `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	Email              string     `json:"email,omitempty" firestore:"email,omitempty"`
	Age                int        `json:"age,omitempty" firestore:"age,omitempty"`
	Gender             string     `json:"gender,omitempty" firestore:"gender,omitempty"`
	HeightCm           float64    `json:"height,omitempty" firestore:"height,omitempty"`
	WeightKg           float64    `json:"weight,omitempty" firestore:"weight,omitempty"`
	Goal               string     `json:"goal,omitempty" firestore:"goal,omitempty"`
	ActivityLevel      string     `json:"activityLevel,omitempty" firestore:"activityLevel,omitempty"`
	FitnessLevel       string     `json:"fitnessLevel,omitempty" firestore:"fitnessLevel,omitempty"`
	WorkoutLocation    string     `json:"workoutLocation,omitempty" firestore:"workoutLocation,omitempty"`
	DaysPerWeek        int        `json:"daysPerWeek,omitempty" firestore:"daysPerWeek,omitempty"`
	Injuries           string     `json:"injuries,omitempty" firestore:"injuries,omitempty"`
	Allergies          []string   `json:"allergies,omitempty" firestore:"allergies,omitempty"`
	DietaryPreference  string     `json:"dietaryPreference,omitempty" firestore:"dietaryPreference,omitempty"`
	Tier               string     `json:"tier,omitempty" firestore:"tier,omitempty"`
	IsAdmin            bool       `json:"isAdmin,omitempty" firestore:"isAdmin,omitempty"`
	GenerationCount    int        `json:"generationCount,omitempty" firestore:"generationCount,omitempty"`
	GenerationsResetAt *time.Time `json:"generationsResetAt,omitempty" firestore:"generationsResetAt,omitempty"`
	CreatedAt          *time.Time `json:"createdAt,omitempty" firestore:"createdAt,omitempty"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty" firestore:"updatedAt,omitempty"`
}

// WorkoutCompletion is one day's entry in workoutCompletions/{uid}.
type WorkoutCompletion struct {
	Date           string    `json:"date" firestore:"-"`
	Completed      bool      `json:"completed" firestore:"completed"`
	CaloriesBurned int       `json:"caloriesBurned" firestore:"caloriesBurned"`
	Timestamp      time.Time `json:"timestamp" firestore:"timestamp"`
}

// StoredWorkoutPlan is the document at userWorkouts/{uid}.
type StoredWorkoutPlan struct {
	WeeklyPlan  WeeklyWorkoutPlan `json:"weeklyPlan" firestore:"weeklyPlan"`
	GeneratedAt time.Time         `json:"generatedAt" firestore:"generatedAt"`
	UpdatedAt   time.Time         `json:"updatedAt" firestore:"updatedAt"`
}
