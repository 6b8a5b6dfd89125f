package shared

import (
	"context"

	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/fitai/fitai-server/pkg/types"
)

// --- Persistence Interfaces ---

type Database interface {
	SetExecution(ctx context.Context, record *types.ExecutionRecord) error
	UpdateExecution(ctx context.Context, id string, data map[string]interface{}) error

	// Profile
	GetProfile(ctx context.Context, userID string) (*types.UserProfile, error)
	SaveProfile(ctx context.Context, userID string, data map[string]interface{}) error

	// Generation count (for tier limits)
	IncrementGenerationCount(ctx context.Context, userID string) error
	ResetGenerationCount(ctx context.Context, userID string) error

	// Plans
	GetWorkoutPlan(ctx context.Context, userID string) (*types.StoredWorkoutPlan, error)
	SaveWorkoutPlan(ctx context.Context, userID string, plan types.WeeklyWorkoutPlan) error

	// Completions
	GetCompletions(ctx context.Context, userID string) (map[string]types.WorkoutCompletion, error)
	SetCompletion(ctx context.Context, userID string, completion types.WorkoutCompletion) error
}

// --- Messaging Interfaces ---

type Publisher interface {
	PublishCloudEvent(ctx context.Context, topic string, e event.Event) (string, error)
}

// --- Storage Interfaces ---

type BlobStore interface {
	Write(ctx context.Context, bucket, object string, data []byte) error
	Read(ctx context.Context, bucket, object string) ([]byte, error)
}

// --- Secrets Interface ---

type SecretStore interface {
	GetSecret(ctx context.Context, projectID, name string) (string, error)
}
