package proxy

import (
	"fmt"
	"strings"

	apperrors "github.com/fitai/fitai-server/pkg/errors"
	"github.com/fitai/fitai-server/pkg/normalizer"
	"github.com/fitai/fitai-server/pkg/types"
)

// Validation messages returned to clients.
const (
	MsgMessagesRequired = "Messages are required and must be an array"
	MsgFoodRequired     = "Either an image URL or food name is required, along with the user goal"
	MsgMissingUserInfo  = "Missing required user information"
	MsgInvalidCategory  = "Category must be one of all, breakfast, lunch, dinner or snacks"
)

// ChatRequest is the body of the chat endpoint.
type ChatRequest struct {
	Messages []types.ChatMessage `json:"messages"`
}

func (r ChatRequest) validate() error {
	if r.Messages == nil {
		return apperrors.ErrValidation.WithMessage(MsgMessagesRequired)
	}
	return nil
}

// Query is the content of the last message.
func (r ChatRequest) Query() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[len(r.Messages)-1].Content
}

func (r ChatRequest) hasSystem() bool {
	for _, m := range r.Messages {
		if m.Role == types.RoleSystem {
			return true
		}
	}
	return false
}

// FoodRequest is the body of the analyze-food endpoint.
type FoodRequest struct {
	ImageURL string `json:"imageUrl,omitempty"`
	FoodName string `json:"foodName,omitempty"`
	UserGoal string `json:"userGoal"`
}

func (r FoodRequest) validate() error {
	if (strings.TrimSpace(r.ImageURL) == "" && strings.TrimSpace(r.FoodName) == "") || strings.TrimSpace(r.UserGoal) == "" {
		return apperrors.ErrValidation.WithMessage(MsgFoodRequired)
	}
	return nil
}

// DietRequest is the body of the generate-diet endpoint.
type DietRequest struct {
	Age           int      `json:"age"`
	Gender        string   `json:"gender"`
	Weight        float64  `json:"weight"`
	Height        float64  `json:"height"`
	Goal          string   `json:"goal"`
	ActivityLevel string   `json:"activityLevel"`
	Allergies     []string `json:"allergies,omitempty"`
}

func (r DietRequest) validate() error {
	if r.Age <= 0 || r.Gender == "" || r.Weight <= 0 || r.Height <= 0 || r.Goal == "" || r.ActivityLevel == "" {
		return apperrors.ErrValidation.WithMessage(MsgMissingUserInfo)
	}
	return nil
}

// WorkoutRequest is the body of the generate-workout endpoint.
type WorkoutRequest struct {
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	FitnessLevel string `json:"fitnessLevel"`
	Location     string `json:"location"`
	DaysPerWeek  int    `json:"daysPerWeek"`
	Goal         string `json:"goal"`
	Injuries     string `json:"injuries,omitempty"`
}

func (r WorkoutRequest) validate() error {
	if r.Age <= 0 || r.Gender == "" || r.FitnessLevel == "" || r.Location == "" || r.DaysPerWeek <= 0 || r.Goal == "" {
		return apperrors.ErrValidation.WithMessage(MsgMissingUserInfo)
	}
	return nil
}

// WeeklyPlanRequest carries the profile fields used to personalize the
// weekly plan suggestions.
type WeeklyPlanRequest struct {
	ExperienceLevel string   `json:"experienceLevel"`
	Height          float64  `json:"height"`
	Weight          float64  `json:"weight"`
	Goals           []string `json:"goals"`
}

// WeeklyPlanRequestFromProfile fills a request from a stored profile,
// substituting neutral values for missing fields.
func WeeklyPlanRequestFromProfile(p *types.UserProfile) WeeklyPlanRequest {
	req := WeeklyPlanRequest{ExperienceLevel: "beginner", Goals: []string{"general fitness"}}
	if p == nil {
		return req
	}
	if p.FitnessLevel != "" {
		req.ExperienceLevel = p.FitnessLevel
	}
	req.Height = p.HeightCm
	req.Weight = p.WeightKg
	if p.Goal != "" {
		req.Goals = []string{p.Goal}
	}
	return req
}

// templateDays renders the weekly template as the "Day (Focus): A, B, C"
// lines the suggestion prompt shows the model.
func templateDays() []string {
	plan := normalizer.WeeklyTemplate()
	var lines []string
	for _, day := range types.Weekdays {
		dw := plan.Day(day)
		if dw == nil {
			continue
		}
		title := strings.ToUpper(day[:1]) + day[1:]
		if len(dw.Exercises) == 0 {
			lines = append(lines, fmt.Sprintf("%s: %s", title, dw.WorkoutName))
			continue
		}
		names := make([]string, len(dw.Exercises))
		for i, e := range dw.Exercises {
			names[i] = e.Name
		}
		lines = append(lines, fmt.Sprintf("%s (%s): %s", title, strings.Join(dw.TargetMuscles, "/"), strings.Join(names, ", ")))
	}
	return lines
}

// MealPlanRequest is the body of the meal plan endpoint.
type MealPlanRequest struct {
	Category string `json:"category"`
}

func (r *MealPlanRequest) normalize() error {
	c := strings.ToLower(strings.TrimSpace(r.Category))
	switch c {
	case "":
		c = normalizer.CategoryAll
	case normalizer.CategoryAll, "breakfast", "lunch", "dinner":
	case "snack", "snacks":
		c = "snacks"
	default:
		return apperrors.ErrValidation.WithMessage(MsgInvalidCategory)
	}
	r.Category = c
	return nil
}
