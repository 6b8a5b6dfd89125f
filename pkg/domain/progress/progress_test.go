package progress

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cloudevents/sdk-go/v2/event"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	shared "github.com/fitai/fitai-server/pkg"
	apperrors "github.com/fitai/fitai-server/pkg/errors"
	"github.com/fitai/fitai-server/pkg/testing/mocks"
	"github.com/fitai/fitai-server/pkg/types"
)

func TestMain(m *testing.M) {
	// opencensus, pulled in by the Pub/Sub client, starts its worker at init
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// Wednesday
var now = time.Date(2026, time.March, 4, 15, 0, 0, 0, time.UTC)

func date(s string) openapi_types.Date {
	t, err := time.Parse(openapi_types.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return openapi_types.Date{Time: t}
}

func completed(dates ...string) map[string]types.WorkoutCompletion {
	out := make(map[string]types.WorkoutCompletion, len(dates))
	for _, d := range dates {
		out[d] = types.WorkoutCompletion{Date: d, Completed: true, CaloriesBurned: 300}
	}
	return out
}

func newTracker(db *mocks.MockDatabase, pub shared.Publisher) *Tracker {
	tr := NewTracker(db, pub, nil)
	tr.now = func() time.Time { return now }
	return tr
}

func TestRecordCompletion(t *testing.T) {
	t.Run("completed day publishes event", func(t *testing.T) {
		db := &mocks.MockDatabase{}
		var saved types.WorkoutCompletion
		db.SetCompletionFunc = func(ctx context.Context, userID string, c types.WorkoutCompletion) error {
			saved = c
			return nil
		}
		var topic string
		var published event.Event
		pub := &mocks.MockPublisher{PublishCloudEventFunc: func(ctx context.Context, tp string, e event.Event) (string, error) {
			topic, published = tp, e
			return "msg-1", nil
		}}

		day := &types.DayWorkout{WorkoutName: "Chest", CaloriesBurned: "350-400"}
		c, err := newTracker(db, pub).RecordCompletion(context.Background(), "u1", date("2026-03-02"), true, day)
		require.NoError(t, err)

		assert.Equal(t, "2026-03-02", c.Date)
		assert.Equal(t, 350, c.CaloriesBurned)
		assert.Equal(t, c, saved)
		assert.Equal(t, shared.TopicWorkoutCompleted, topic)
		assert.Equal(t, shared.EventTypeWorkoutCompleted, published.Type())

		var payload types.WorkoutCompletedEvent
		require.NoError(t, json.Unmarshal(published.Data(), &payload))
		assert.Equal(t, types.WorkoutCompletedEvent{UserID: "u1", Date: "2026-03-02", Weekday: "monday", CaloriesBurned: 350}, payload)
	})

	t.Run("default calories", func(t *testing.T) {
		c, err := newTracker(&mocks.MockDatabase{}, nil).RecordCompletion(context.Background(), "u1", date("2026-03-02"), true, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultCaloriesBurned, c.CaloriesBurned)
	})

	t.Run("uncompleting does not publish", func(t *testing.T) {
		pub := &mocks.MockPublisher{PublishCloudEventFunc: func(ctx context.Context, tp string, e event.Event) (string, error) {
			t.Fatal("unexpected publish")
			return "", nil
		}}
		c, err := newTracker(&mocks.MockDatabase{}, pub).RecordCompletion(context.Background(), "u1", date("2026-03-02"), false, &types.DayWorkout{CaloriesBurned: "300"})
		require.NoError(t, err)
		assert.False(t, c.Completed)
		assert.Zero(t, c.CaloriesBurned)
	})

	t.Run("publish failure still saves", func(t *testing.T) {
		pub := &mocks.MockPublisher{PublishCloudEventFunc: func(ctx context.Context, tp string, e event.Event) (string, error) {
			return "", errors.New("unavailable")
		}}
		_, err := newTracker(&mocks.MockDatabase{}, pub).RecordCompletion(context.Background(), "u1", date("2026-03-02"), true, nil)
		assert.NoError(t, err)
	})

	t.Run("store failure", func(t *testing.T) {
		db := &mocks.MockDatabase{SetCompletionFunc: func(ctx context.Context, userID string, c types.WorkoutCompletion) error {
			return errors.New("down")
		}}
		_, err := newTracker(db, nil).RecordCompletion(context.Background(), "u1", date("2026-03-02"), true, nil)
		assert.Equal(t, apperrors.CodeStorageError, apperrors.GetCode(err))
	})

	t.Run("validation", func(t *testing.T) {
		tr := newTracker(&mocks.MockDatabase{}, nil)
		_, err := tr.RecordCompletion(context.Background(), "", date("2026-03-02"), true, nil)
		assert.ErrorIs(t, err, apperrors.ErrUserUnauthorized)
		_, err = tr.RecordCompletion(context.Background(), "u1", openapi_types.Date{}, true, nil)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestCompletionRequestJSON(t *testing.T) {
	var req CompletionRequest
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2026-03-02","completed":true}`), &req))
	assert.Equal(t, "2026-03-02", req.Date.String())
	assert.True(t, req.Completed)

	assert.Error(t, json.Unmarshal([]byte(`{"date":"March 2nd"}`), &req))
}

func TestSummary(t *testing.T) {
	db := &mocks.MockDatabase{
		GetCompletionsFunc: func(ctx context.Context, userID string) (map[string]types.WorkoutCompletion, error) {
			return completed("2026-03-01", "2026-03-02", "2026-03-04", "2026-02-27"), nil
		},
		GetWorkoutPlanFunc: func(ctx context.Context, userID string) (*types.StoredWorkoutPlan, error) {
			return &types.StoredWorkoutPlan{WeeklyPlan: types.WeeklyWorkoutPlan{
				Monday: &types.DayWorkout{WorkoutName: "Chest", Exercises: []types.Exercise{{Name: "Push-ups"}}},
				Sunday: &types.DayWorkout{WorkoutName: "Rest Day"},
			}}, nil
		},
	}

	s, err := newTracker(db, nil).Summary(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "2026-03-01", s.WeekStart)
	require.Len(t, s.Days, 7)
	assert.Equal(t, "sunday", s.Days[0].Weekday)
	assert.False(t, s.Days[0].Planned)
	assert.Equal(t, "Chest", s.Days[1].WorkoutName)
	assert.True(t, s.Days[1].Planned)
	assert.Equal(t, 3, s.CompletedCount)
	assert.Equal(t, 900, s.TotalCalories)
	assert.Equal(t, 1, s.Streak)
}

func TestSummary_StoreError(t *testing.T) {
	db := &mocks.MockDatabase{
		GetCompletionsFunc: func(ctx context.Context, userID string) (map[string]types.WorkoutCompletion, error) {
			return nil, errors.New("down")
		},
		GetWorkoutPlanFunc: func(ctx context.Context, userID string) (*types.StoredWorkoutPlan, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	_, err := newTracker(db, nil).Summary(context.Background(), "u1")
	assert.Equal(t, apperrors.CodeStorageError, apperrors.GetCode(err))
}

func TestSummary_NoPlan(t *testing.T) {
	s, err := newTracker(&mocks.MockDatabase{}, nil).Summary(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, s.CompletedCount)
	assert.Len(t, s.Days, 7)
}

func TestWeeklyStreak(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{"none", nil, 0},
		{"current week only", []string{"2026-03-01", "2026-03-02", "2026-03-03"}, 1},
		{"two weeks", []string{"2026-03-01", "2026-03-02", "2026-03-03", "2026-02-22", "2026-02-24", "2026-02-28"}, 2},
		{"current week short breaks streak", []string{"2026-03-01", "2026-02-22", "2026-02-24", "2026-02-28"}, 0},
		{"gap stops count", []string{"2026-03-01", "2026-03-02", "2026-03-03", "2026-02-15", "2026-02-16", "2026-02-17"}, 1},
		{"bad keys ignored", []string{"2026-03-01", "2026-03-02", "yesterday"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeeklyStreak(completed(tt.dates...), now))
		})
	}

	t.Run("capped at lookback", func(t *testing.T) {
		var dates []string
		start := WeekStart(now)
		for w := 0; w < 12; w++ {
			for d := 0; d < 3; d++ {
				dates = append(dates, start.AddDate(0, 0, -7*w+d).Format(openapi_types.DateFormat))
			}
		}
		assert.Equal(t, StreakLookbackWeeks, WeeklyStreak(completed(dates...), now))
	})

	t.Run("uncompleted entries ignored", func(t *testing.T) {
		c := completed("2026-03-01", "2026-03-02")
		c["2026-03-03"] = types.WorkoutCompletion{Date: "2026-03-03"}
		assert.Zero(t, WeeklyStreak(c, now))
	})
}

func TestWeekStart(t *testing.T) {
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), WeekStart(now))
	sunday := time.Date(2026, time.March, 1, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), WeekStart(sunday))
}

func TestParseCalories(t *testing.T) {
	tests := map[string]int{
		"300-350":   300,
		" 420 kcal": 420,
		"":          0,
		"~200":      0,
		// wraps int64 if accumulated digit by digit
		"18446744073709551916 kcal": 0,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseCalories(in), in)
	}
}
