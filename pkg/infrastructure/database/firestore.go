package database

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	shared "github.com/fitai/fitai-server/pkg"
	apperrors "github.com/fitai/fitai-server/pkg/errors"
	storage "github.com/fitai/fitai-server/pkg/storage/firestore"
	"github.com/fitai/fitai-server/pkg/types"
)

// FirestoreAdapter provides database operations using Firestore
// It wraps our typed storage client
type FirestoreAdapter struct {
	storage *storage.Client
	now     func() time.Time
}

var _ shared.Database = (*FirestoreAdapter)(nil)

func NewFirestoreAdapter(client *firestore.Client) *FirestoreAdapter {
	return &FirestoreAdapter{
		storage: storage.NewClient(client),
		now:     time.Now,
	}
}

// --- Executions ---

func (a *FirestoreAdapter) SetExecution(ctx context.Context, record *types.ExecutionRecord) error {
	return a.storage.Executions().Doc(record.ExecutionID).Set(ctx, record)
}

func (a *FirestoreAdapter) UpdateExecution(ctx context.Context, id string, data map[string]interface{}) error {
	return a.storage.Executions().Doc(id).Update(ctx, storage.Updates(data))
}

// --- Profile ---

func (a *FirestoreAdapter) GetProfile(ctx context.Context, userID string) (*types.UserProfile, error) {
	p, err := a.storage.Users().Doc(userID).Get(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.ErrUserNotFound.WithMetadata("user_id", userID)
	}
	// Manually populate ID since it's the doc key
	p.UserID = userID
	return p, nil
}

func (a *FirestoreAdapter) SaveProfile(ctx context.Context, userID string, data map[string]interface{}) error {
	data["updatedAt"] = firestore.ServerTimestamp
	return a.storage.Users().Doc(userID).Merge(ctx, data)
}

// --- Generation Count (for tier limits) ---

func (a *FirestoreAdapter) IncrementGenerationCount(ctx context.Context, userID string) error {
	return a.storage.Users().Doc(userID).Merge(ctx, map[string]interface{}{
		"generationCount": firestore.Increment(1),
	})
}

func (a *FirestoreAdapter) ResetGenerationCount(ctx context.Context, userID string) error {
	return a.storage.Users().Doc(userID).Merge(ctx, map[string]interface{}{
		"generationCount":    0,
		"generationsResetAt": firestore.ServerTimestamp,
	})
}

// --- Workout Plans ---

func (a *FirestoreAdapter) GetWorkoutPlan(ctx context.Context, userID string) (*types.StoredWorkoutPlan, error) {
	return a.storage.WorkoutPlans().Doc(userID).Get(ctx)
}

func (a *FirestoreAdapter) SaveWorkoutPlan(ctx context.Context, userID string, plan types.WeeklyWorkoutPlan) error {
	now := a.now().UTC()
	return a.storage.WorkoutPlans().Doc(userID).Set(ctx, &types.StoredWorkoutPlan{
		WeeklyPlan:  plan,
		GeneratedAt: now,
		UpdatedAt:   now,
	})
}

// --- Completions ---

func (a *FirestoreAdapter) GetCompletions(ctx context.Context, userID string) (map[string]types.WorkoutCompletion, error) {
	snap, err := a.storage.Completions().Doc(userID).Get(ctx)
	if err != nil {
		if storage.IsNotFound(err) {
			return map[string]types.WorkoutCompletion{}, nil
		}
		return nil, err
	}
	return storage.FirestoreToCompletions(snap.Data()), nil
}

func (a *FirestoreAdapter) SetCompletion(ctx context.Context, userID string, completion types.WorkoutCompletion) error {
	_, err := a.storage.Completions().Doc(userID).Set(ctx, storage.CompletionToFirestore(completion), firestore.MergeAll)
	return err
}
