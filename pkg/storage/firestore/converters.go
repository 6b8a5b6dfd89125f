package firestore

import (
	"strconv"
	"strings"
	"time"

	"github.com/fitai/fitai-server/pkg/types"
)

// Helper to safely get string from map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Helper to safely get bool from map
func getBool(m map[string]interface{}, key string) bool {
	if v, ok := m[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// Helper to get a number from map. Firestore returns int64 for integers
// and float64 for doubles; documents written by the web client use both.
func getFloat(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	}
	return 0
}

func getInt(m map[string]interface{}, key string) int {
	return int(getFloat(m, key))
}

// Helper to safely get time from map (handles time.Time from Firestore)
func getTime(m map[string]interface{}, key string) *time.Time {
	if v, ok := m[key]; ok {
		if t, ok := v.(time.Time); ok {
			return &t
		}
	}
	return nil
}

func getStrings(m map[string]interface{}, key string) []string {
	switch v := m[key].(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func setIf(m map[string]interface{}, key string, v interface{}, ok bool) {
	if ok {
		m[key] = v
	}
}

// --- UserProfile Converters ---

// ProfileToFirestore returns the non-empty profile fields keyed as the
// web client stores them.
func ProfileToFirestore(p *types.UserProfile) map[string]interface{} {
	m := map[string]interface{}{}
	setIf(m, "displayName", p.DisplayName, p.DisplayName != "")
	setIf(m, "email", p.Email, p.Email != "")
	setIf(m, "age", p.Age, p.Age > 0)
	setIf(m, "gender", p.Gender, p.Gender != "")
	setIf(m, "height", p.HeightCm, p.HeightCm > 0)
	setIf(m, "weight", p.WeightKg, p.WeightKg > 0)
	setIf(m, "goal", p.Goal, p.Goal != "")
	setIf(m, "activityLevel", p.ActivityLevel, p.ActivityLevel != "")
	setIf(m, "fitnessLevel", p.FitnessLevel, p.FitnessLevel != "")
	setIf(m, "workoutLocation", p.WorkoutLocation, p.WorkoutLocation != "")
	setIf(m, "daysPerWeek", p.DaysPerWeek, p.DaysPerWeek > 0)
	setIf(m, "injuries", p.Injuries, p.Injuries != "")
	setIf(m, "allergies", p.Allergies, p.Allergies != nil)
	setIf(m, "dietaryPreference", p.DietaryPreference, p.DietaryPreference != "")
	if p.CreatedAt != nil {
		m["createdAt"] = *p.CreatedAt
	}
	if p.UpdatedAt != nil {
		m["updatedAt"] = *p.UpdatedAt
	}
	return m
}

// FirestoreToProfile reads a users/{uid} document. Tier, admin and quota
// fields are read here but never written by ProfileToFirestore.
func FirestoreToProfile(m map[string]interface{}) *types.UserProfile {
	return &types.UserProfile{
		DisplayName:        getString(m, "displayName"),
		Email:              getString(m, "email"),
		Age:                getInt(m, "age"),
		Gender:             getString(m, "gender"),
		HeightCm:           getFloat(m, "height"),
		WeightKg:           getFloat(m, "weight"),
		Goal:               getString(m, "goal"),
		ActivityLevel:      getString(m, "activityLevel"),
		FitnessLevel:       getString(m, "fitnessLevel"),
		WorkoutLocation:    getString(m, "workoutLocation"),
		DaysPerWeek:        getInt(m, "daysPerWeek"),
		Injuries:           getString(m, "injuries"),
		Allergies:          getStrings(m, "allergies"),
		DietaryPreference:  getString(m, "dietaryPreference"),
		Tier:               getString(m, "tier"),
		IsAdmin:            getBool(m, "isAdmin"),
		GenerationCount:    getInt(m, "generationCount"),
		GenerationsResetAt: getTime(m, "generationsResetAt"),
		CreatedAt:          getTime(m, "createdAt"),
		UpdatedAt:          getTime(m, "updatedAt"),
	}
}

// --- Execution Record ---

func ExecutionToFirestore(e *types.ExecutionRecord) map[string]interface{} {
	m := map[string]interface{}{
		"execution_id": e.ExecutionID,
		"service":      e.Service,
		"status":       e.Status.String(),
		"timestamp":    e.Timestamp,
		"trigger_type": e.TriggerType,
		"start_time":   e.StartTime,
	}
	setIf(m, "user_id", e.UserID, e.UserID != "")
	setIf(m, "inputs_json", e.InputsJSON, e.InputsJSON != "")
	setIf(m, "outputs_json", e.OutputsJSON, e.OutputsJSON != "")
	setIf(m, "error_message", e.ErrorMessage, e.ErrorMessage != "")
	if e.EndTime != nil {
		m["end_time"] = *e.EndTime
	}
	return m
}

func FirestoreToExecution(m map[string]interface{}) *types.ExecutionRecord {
	e := &types.ExecutionRecord{
		ExecutionID:  getString(m, "execution_id"),
		Service:      getString(m, "service"),
		TriggerType:  getString(m, "trigger_type"),
		UserID:       getString(m, "user_id"),
		InputsJSON:   getString(m, "inputs_json"),
		OutputsJSON:  getString(m, "outputs_json"),
		ErrorMessage: getString(m, "error_message"),
		EndTime:      getTime(m, "end_time"),
	}
	if t := getTime(m, "timestamp"); t != nil {
		e.Timestamp = *t
	}
	if t := getTime(m, "start_time"); t != nil {
		e.StartTime = *t
	}

	// Status is written as its name; older records may hold the number.
	switch val := m["status"].(type) {
	case int64:
		e.Status = types.ExecutionStatus(val)
	case string:
		for s := types.ExecutionStatusUnspecified; s <= types.ExecutionStatusFailed; s++ {
			if s.String() == val {
				e.Status = s
			}
		}
	}
	return e
}

// --- Workout Completions ---

// CompletionToFirestore returns the field for one day of the
// workoutCompletions/{uid} document, keyed by date.
func CompletionToFirestore(c types.WorkoutCompletion) map[string]interface{} {
	return map[string]interface{}{
		c.Date: map[string]interface{}{
			"completed":      c.Completed,
			"caloriesBurned": c.CaloriesBurned,
			"timestamp":      c.Timestamp,
		},
	}
}

// FirestoreToCompletions reads a workoutCompletions/{uid} document.
// Entries that are not maps are skipped.
func FirestoreToCompletions(m map[string]interface{}) map[string]types.WorkoutCompletion {
	out := make(map[string]types.WorkoutCompletion, len(m))
	for date, v := range m {
		entry, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		c := types.WorkoutCompletion{
			Date:           date,
			Completed:      getBool(entry, "completed"),
			CaloriesBurned: getInt(entry, "caloriesBurned"),
		}
		if t := getTime(entry, "timestamp"); t != nil {
			c.Timestamp = *t
		}
		out[date] = c
	}
	return out
}
