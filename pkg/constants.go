package shared

const (
	ProjectID = "fitai-project" // Can be overridden by GOOGLE_CLOUD_PROJECT

	TopicWorkoutCompleted = "topic-workout-completed"

	EventTypeWorkoutCompleted = "com.fitai.workout.completed"

	CollectionUsers              = "users"
	CollectionUserWorkouts       = "userWorkouts"
	CollectionWorkoutCompletions = "workoutCompletions"
	CollectionExecutions         = "executions"

	SecretGeminiAPIKey = "GEMINI_API_KEY"

	DefaultGeminiModel = "gemini-1.5-flash"
)
