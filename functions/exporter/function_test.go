package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/muktihari/fit/decoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/fitai/fitai-server/pkg"
	"github.com/fitai/fitai-server/pkg/bootstrap"
	"github.com/fitai/fitai-server/pkg/framework"
	"github.com/fitai/fitai-server/pkg/infrastructure/pubsub"
	"github.com/fitai/fitai-server/pkg/testing/mocks"
	"github.com/fitai/fitai-server/pkg/types"
)

type written struct {
	bucket, object string
	data           []byte
}

func setup(t *testing.T, plan *types.StoredWorkoutPlan) (*bootstrap.Service, *[]written) {
	t.Helper()
	var out []written
	svc := &bootstrap.Service{
		DB: &mocks.MockDatabase{
			GetWorkoutPlanFunc: func(ctx context.Context, userID string) (*types.StoredWorkoutPlan, error) {
				return plan, nil
			},
		},
		Store: &mocks.MockBlobStore{
			WriteFunc: func(ctx context.Context, bucket, object string, data []byte) error {
				out = append(out, written{bucket, object, data})
				return nil
			},
		},
		Config: &bootstrap.Config{GCSArtifactBucket: "artifacts"},
	}
	return svc, &out
}

func mondayPlan() *types.StoredWorkoutPlan {
	var plan types.WeeklyWorkoutPlan
	plan.SetDay("monday", &types.DayWorkout{
		WorkoutName:    "Chest and Triceps",
		CaloriesBurned: "300-350",
		Exercises: []types.Exercise{
			{Name: "Push-ups", Sets: 3, Reps: 10},
			{Name: "Bench Press", Sets: 3, Reps: 8},
		},
	})
	plan.SetDay("tuesday", &types.DayWorkout{WorkoutName: "Rest Day"})
	return &types.StoredWorkoutPlan{WeeklyPlan: plan}
}

func completedEvent(t *testing.T, date, weekday string) event.Event {
	t.Helper()
	e, err := pubsub.NewCloudEvent("/test", shared.EventTypeWorkoutCompleted, types.WorkoutCompletedEvent{
		UserID: "u1", Date: date, Weekday: weekday, CaloriesBurned: 300,
	})
	require.NoError(t, err)
	return e
}

func TestExportWorkout(t *testing.T) {
	svc, out := setup(t, mondayPlan())

	err := framework.WrapCloudEvent("exporter", svc, exportHandler)(context.Background(), completedEvent(t, "2026-03-02", "monday"))

	require.NoError(t, err)
	require.Len(t, *out, 1)
	w := (*out)[0]
	assert.Equal(t, "artifacts", w.bucket)
	assert.Equal(t, "fit/u1/2026-03-02.fit", w.object)

	fitData, err := decoder.New(bytes.NewReader(w.data)).Decode()
	require.NoError(t, err)
	assert.NotEmpty(t, fitData.Messages)
}

func TestExportWorkout_WeekdayFromDate(t *testing.T) {
	svc, out := setup(t, mondayPlan())

	res, err := exportHandler(context.Background(), completedEvent(t, "2026-03-02", ""), &framework.FrameworkContext{Service: svc, Logger: discardLogger()})

	require.NoError(t, err)
	assert.Equal(t, "exported", res.(ExportResult).Status)
	assert.Len(t, *out, 1)
}

func TestExportWorkout_Skips(t *testing.T) {
	tests := []struct {
		name   string
		plan   *types.StoredWorkoutPlan
		date   string
		bucket string
		reason string
	}{
		{"rest day", mondayPlan(), "2026-03-03", "artifacts", "rest day"},
		{"unplanned day", mondayPlan(), "2026-03-04", "artifacts", "rest day"},
		{"no plan", nil, "2026-03-02", "artifacts", "no plan"},
		{"no bucket", mondayPlan(), "2026-03-02", "", "no bucket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, out := setup(t, tt.plan)
			svc.Config.GCSArtifactBucket = tt.bucket

			res, err := exportHandler(context.Background(), completedEvent(t, tt.date, ""), &framework.FrameworkContext{Service: svc, Logger: discardLogger()})

			require.NoError(t, err)
			assert.Equal(t, ExportResult{Status: "skipped", Reason: tt.reason}, res)
			assert.Empty(t, *out)
		})
	}
}

func TestExportWorkout_Errors(t *testing.T) {
	t.Run("bad date", func(t *testing.T) {
		svc, _ := setup(t, mondayPlan())
		_, err := exportHandler(context.Background(), completedEvent(t, "March 2nd", ""), &framework.FrameworkContext{Service: svc, Logger: discardLogger()})
		assert.Error(t, err)
	})

	t.Run("plan load failure", func(t *testing.T) {
		svc, _ := setup(t, nil)
		svc.DB = &mocks.MockDatabase{
			GetWorkoutPlanFunc: func(ctx context.Context, userID string) (*types.StoredWorkoutPlan, error) {
				return nil, errors.New("unavailable")
			},
		}
		_, err := exportHandler(context.Background(), completedEvent(t, "2026-03-02", ""), &framework.FrameworkContext{Service: svc, Logger: discardLogger()})
		assert.Error(t, err)
	})

	t.Run("write failure", func(t *testing.T) {
		svc, _ := setup(t, mondayPlan())
		svc.Store = &mocks.MockBlobStore{
			WriteFunc: func(ctx context.Context, bucket, object string, data []byte) error {
				return errors.New("denied")
			},
		}
		_, err := exportHandler(context.Background(), completedEvent(t, "2026-03-02", ""), &framework.FrameworkContext{Service: svc, Logger: discardLogger()})
		assert.Error(t, err)
	})
}

func TestExportWorkoutHTTP_PushBody(t *testing.T) {
	svc, out := setup(t, mondayPlan())

	payload, err := json.Marshal(types.WorkoutCompletedEvent{UserID: "u1", Date: "2026-03-02", Weekday: "monday"})
	require.NoError(t, err)
	body, err := json.Marshal(map[string]any{"message": map[string]any{"data": payload}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	serveHTTP(rec, req, svc)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, *out, 1)
}

func TestExportWorkoutHTTP_BadBody(t *testing.T) {
	svc, _ := setup(t, mondayPlan())
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	serveHTTP(rec, req, svc)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "fit/abc/2026-01-05.fit", ObjectName("abc", "2026-01-05"))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
