package progress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/fitai/fitai-server/pkg"
	"github.com/fitai/fitai-server/pkg/bootstrap"
	"github.com/fitai/fitai-server/pkg/domain/progress"
	"github.com/fitai/fitai-server/pkg/framework"
	"github.com/fitai/fitai-server/pkg/session"
	"github.com/fitai/fitai-server/pkg/testing/mocks"
	"github.com/fitai/fitai-server/pkg/types"
)

func serve(svc *bootstrap.Service, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	framework.WrapHTTP("progress", svc, options, handler).ServeHTTP(rec, req)
	return rec
}

func storedPlan() *types.StoredWorkoutPlan {
	plan := types.WeeklyWorkoutPlan{}
	plan.SetDay("monday", &types.DayWorkout{
		WorkoutName:    "Chest and Triceps",
		CaloriesBurned: "350-400",
		Exercises:      []types.Exercise{{Name: "Push-ups", Sets: 3, Reps: 10}},
	})
	return &types.StoredWorkoutPlan{WeeklyPlan: plan}
}

func TestProgress_RecordCompletion(t *testing.T) {
	var saved types.WorkoutCompletion
	var topic string
	db := &mocks.MockDatabase{
		GetWorkoutPlanFunc: func(ctx context.Context, userID string) (*types.StoredWorkoutPlan, error) {
			return storedPlan(), nil
		},
		SetCompletionFunc: func(ctx context.Context, userID string, c types.WorkoutCompletion) error {
			assert.Equal(t, "u1", userID)
			saved = c
			return nil
		},
	}
	pub := &mocks.MockPublisher{
		PublishCloudEventFunc: func(ctx context.Context, tp string, e event.Event) (string, error) {
			topic = tp
			return "msg-1", nil
		},
	}
	svc := &bootstrap.Service{DB: db, Pub: pub, Sessions: session.DevVerifier{UID: "u1"}}

	// 2026-03-02 is a Monday.
	rec := serve(svc, http.MethodPost, `{"date":"2026-03-02","completed":true}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2026-03-02", saved.Date)
	assert.Equal(t, 350, saved.CaloriesBurned)
	assert.Equal(t, shared.TopicWorkoutCompleted, topic)

	var got types.WorkoutCompletion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Completed)
}

func TestProgress_RecordWithoutPlan(t *testing.T) {
	var saved types.WorkoutCompletion
	db := &mocks.MockDatabase{
		GetWorkoutPlanFunc: func(ctx context.Context, userID string) (*types.StoredWorkoutPlan, error) {
			return nil, errors.New("unavailable")
		},
		SetCompletionFunc: func(ctx context.Context, userID string, c types.WorkoutCompletion) error {
			saved = c
			return nil
		},
	}
	svc := &bootstrap.Service{DB: db, Sessions: session.DevVerifier{UID: "u1"}}

	rec := serve(svc, http.MethodPost, `{"date":"2026-03-03","completed":true}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, progress.DefaultCaloriesBurned, saved.CaloriesBurned)
}

func TestProgress_InvalidDate(t *testing.T) {
	svc := &bootstrap.Service{DB: &mocks.MockDatabase{}, Sessions: session.DevVerifier{UID: "u1"}}
	rec := serve(svc, http.MethodPost, `{"date":"yesterday","completed":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProgress_Summary(t *testing.T) {
	db := &mocks.MockDatabase{
		GetCompletionsFunc: func(ctx context.Context, userID string) (map[string]types.WorkoutCompletion, error) {
			return map[string]types.WorkoutCompletion{}, nil
		},
		GetWorkoutPlanFunc: func(ctx context.Context, userID string) (*types.StoredWorkoutPlan, error) {
			return storedPlan(), nil
		},
	}
	svc := &bootstrap.Service{DB: db, Sessions: session.DevVerifier{UID: "u1"}}

	rec := serve(svc, http.MethodGet, "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var summary progress.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Len(t, summary.Days, 7)
	assert.Zero(t, summary.CompletedCount)
}

func TestProgress_MethodNotAllowed(t *testing.T) {
	svc := &bootstrap.Service{DB: &mocks.MockDatabase{}, Sessions: session.DevVerifier{UID: "u1"}}
	rec := serve(svc, http.MethodDelete, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
