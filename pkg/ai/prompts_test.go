package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitai/fitai-server/pkg/types"
)

func TestDefaultCatalog_Names(t *testing.T) {
	assert.Equal(t, []string{
		PromptAnalyzeFoodImage,
		PromptAnalyzeFoodName,
		PromptChatPersona,
		PromptGenerateDiet,
		PromptGenerateWorkout,
		PromptMealPlan,
		PromptWeeklySuggestions,
	}, DefaultCatalog().Names())
}

func TestRender_Diet(t *testing.T) {
	data := map[string]any{
		"Age": 30, "Gender": "female", "Weight": 62.5, "Height": 168,
		"Goal": "build muscle", "ActivityLevel": "moderate",
		"Allergies": []string{"peanuts", "shellfish"},
	}

	msgs, err := DefaultCatalog().Render(PromptGenerateDiet, data)

	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, types.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "professional nutritionist")
	assert.Equal(t, types.RoleUser, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "a 30 year old female")
	assert.Contains(t, msgs[1].Content, "weighing 62.5kg, 168cm tall")
	assert.Contains(t, msgs[1].Content, "Allergies: peanuts, shellfish.")

	data["Allergies"] = []string{}
	msgs, err = DefaultCatalog().Render(PromptGenerateDiet, data)
	require.NoError(t, err)
	assert.Contains(t, msgs[1].Content, "No allergies.")
}

func TestRender_FoodSharesStructurePrompt(t *testing.T) {
	byName, err := DefaultCatalog().Render(PromptAnalyzeFoodName, map[string]any{"FoodName": "banana", "UserGoal": "lose weight"})
	require.NoError(t, err)
	byImage, err := DefaultCatalog().Render(PromptAnalyzeFoodImage, map[string]any{"UserGoal": "lose weight"})
	require.NoError(t, err)

	require.Len(t, byName, 3)
	require.Len(t, byImage, 3)
	assert.Contains(t, byName[1].Content, "Analyze the nutritional content of banana.")
	assert.Equal(t, byName[2].Content, byImage[2].Content)
	assert.Contains(t, byName[2].Content, `"healthBadges"`)
}

func TestRender_MealPlan(t *testing.T) {
	all, err := DefaultCatalog().Render(PromptMealPlan, map[string]any{"Category": "all"})
	require.NoError(t, err)
	assert.Contains(t, all[1].Content, "breakfast, lunch, dinner and snacks")

	one, err := DefaultCatalog().Render(PromptMealPlan, map[string]any{"Category": "lunch"})
	require.NoError(t, err)
	assert.Contains(t, one[1].Content, "options for lunch")
	assert.Contains(t, one[1].Content, "3-4 different")
}

func TestRender_WeeklySuggestions(t *testing.T) {
	msgs, err := DefaultCatalog().Render(PromptWeeklySuggestions, map[string]any{
		"ExperienceLevel": "beginner", "Height": 180, "Weight": 80,
		"Goals": []string{"strength", "endurance"},
		"Days":  []string{"Monday (Chest/Triceps): Push-ups", "Sunday: Rest Day"},
	})
	require.NoError(t, err)
	assert.Contains(t, msgs[1].Content, "fitness goals: strength, endurance.")
	assert.Contains(t, msgs[1].Content, "Current workout plan:\nMonday (Chest/Triceps): Push-ups\nSunday: Rest Day")
}

func TestRender_Errors(t *testing.T) {
	_, err := DefaultCatalog().Render("missing", nil)
	assert.Error(t, err)

	_, err = DefaultCatalog().Render(PromptGenerateWorkout, map[string]any{"Age": 30})
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("bad:\n  system: \"{{.Unclosed\"\n"))
	assert.Error(t, err)
}
