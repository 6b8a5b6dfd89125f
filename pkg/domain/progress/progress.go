package progress

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"golang.org/x/sync/errgroup"

	shared "github.com/fitai/fitai-server/pkg"
	apperrors "github.com/fitai/fitai-server/pkg/errors"
	"github.com/fitai/fitai-server/pkg/infrastructure/pubsub"
	"github.com/fitai/fitai-server/pkg/types"
)

const (
	// DefaultCaloriesBurned is recorded when a day's estimate is missing.
	DefaultCaloriesBurned = 300

	// StreakMinWorkouts is the number of completed workouts a week needs
	// to count towards the streak.
	StreakMinWorkouts = 3

	// StreakLookbackWeeks bounds how far back a streak is counted.
	StreakLookbackWeeks = 8

	EventSource = "/fitai/progress"
)

// Store is the subset of the database the tracker reads and writes.
type Store interface {
	GetCompletions(ctx context.Context, userID string) (map[string]types.WorkoutCompletion, error)
	SetCompletion(ctx context.Context, userID string, completion types.WorkoutCompletion) error
	GetWorkoutPlan(ctx context.Context, userID string) (*types.StoredWorkoutPlan, error)
}

// CompletionRequest is the body of a completion POST.
type CompletionRequest struct {
	Date      openapi_types.Date `json:"date"`
	Completed bool               `json:"completed"`
}

// DayStatus is one day of the current week.
type DayStatus struct {
	Date           string `json:"date"`
	Weekday        string `json:"weekday"`
	WorkoutName    string `json:"workoutName,omitempty"`
	Planned        bool   `json:"planned"`
	Completed      bool   `json:"completed"`
	CaloriesBurned int    `json:"caloriesBurned"`
}

// Summary is the progress view for the current Sunday-to-Saturday week.
type Summary struct {
	WeekStart      string      `json:"weekStart"`
	Days           []DayStatus `json:"days"`
	CompletedCount int         `json:"completedCount"`
	TotalCalories  int         `json:"totalCalories"`
	Streak         int         `json:"streak"`
}

type Tracker struct {
	store     Store
	publisher shared.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewTracker(store Store, publisher shared.Publisher, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{store: store, publisher: publisher, logger: logger, now: time.Now}
}

// RecordCompletion stores the completion state for date. day is the planned
// workout for that date and may be nil. Completing a day publishes a
// workout completed event.
func (t *Tracker) RecordCompletion(ctx context.Context, userID string, date openapi_types.Date, completed bool, day *types.DayWorkout) (types.WorkoutCompletion, error) {
	if userID == "" {
		return types.WorkoutCompletion{}, apperrors.ErrUserUnauthorized
	}
	if date.Time.IsZero() {
		return types.WorkoutCompletion{}, apperrors.ErrValidation.WithMessage("date is required")
	}

	c := types.WorkoutCompletion{
		Date:      date.String(),
		Completed: completed,
		Timestamp: t.now().UTC(),
	}
	if completed {
		c.CaloriesBurned = DefaultCaloriesBurned
		if day != nil {
			if kcal := ParseCalories(day.CaloriesBurned); kcal > 0 {
				c.CaloriesBurned = kcal
			}
		}
	}

	if err := t.store.SetCompletion(ctx, userID, c); err != nil {
		return c, apperrors.Wrap(err, apperrors.CodeStorageError, "failed to save completion")
	}

	if !completed || t.publisher == nil {
		return c, nil
	}

	weekday := strings.ToLower(date.Time.Weekday().String())
	evt, err := pubsub.NewCloudEvent(EventSource, shared.EventTypeWorkoutCompleted, types.WorkoutCompletedEvent{
		UserID:         userID,
		Date:           c.Date,
		Weekday:        weekday,
		CaloriesBurned: c.CaloriesBurned,
	})
	if err != nil {
		return c, fmt.Errorf("build completion event: %w", err)
	}
	msgID, err := t.publisher.PublishCloudEvent(ctx, shared.TopicWorkoutCompleted, evt)
	if err != nil {
		// The completion is saved; the export is best effort.
		t.logger.Error("Failed to publish completion event", "error", err, "user_id", userID, "date", c.Date)
		return c, nil
	}
	t.logger.Info("Published completion event", "message_id", msgID, "user_id", userID, "date", c.Date)
	return c, nil
}

// PlannedDay returns the stored plan's workout for date, or nil.
func (t *Tracker) PlannedDay(ctx context.Context, userID string, date openapi_types.Date) (*types.DayWorkout, error) {
	plan, err := t.store.GetWorkoutPlan(ctx, userID)
	if err != nil || plan == nil {
		return nil, err
	}
	return plan.WeeklyPlan.Day(strings.ToLower(date.Time.Weekday().String())), nil
}

// Summary loads the user's completions and plan and reports the current week.
func (t *Tracker) Summary(ctx context.Context, userID string) (*Summary, error) {
	var (
		completions map[string]types.WorkoutCompletion
		plan        *types.StoredWorkoutPlan
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		completions, err = t.store.GetCompletions(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		plan, err = t.store.GetWorkoutPlan(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorageError, "failed to load progress")
	}

	var weekly *types.WeeklyWorkoutPlan
	if plan != nil {
		weekly = &plan.WeeklyPlan
	}
	return BuildSummary(completions, weekly, t.now()), nil
}

// BuildSummary computes the summary for the week containing now.
func BuildSummary(completions map[string]types.WorkoutCompletion, plan *types.WeeklyWorkoutPlan, now time.Time) *Summary {
	start := WeekStart(now)
	s := &Summary{
		WeekStart: start.Format(openapi_types.DateFormat),
		Days:      make([]DayStatus, 0, 7),
		Streak:    WeeklyStreak(completions, now),
	}

	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		key := d.Format(openapi_types.DateFormat)
		weekday := strings.ToLower(d.Weekday().String())

		status := DayStatus{Date: key, Weekday: weekday}
		if w := plan.Day(weekday); w != nil {
			status.WorkoutName = w.WorkoutName
			status.Planned = len(w.Exercises) > 0
		}
		if c, ok := completions[key]; ok && c.Completed {
			status.Completed = true
			status.CaloriesBurned = c.CaloriesBurned
			s.CompletedCount++
			s.TotalCalories += c.CaloriesBurned
		}
		s.Days = append(s.Days, status)
	}
	return s
}

// WeekStart returns midnight of the Sunday starting now's week, in now's
// location.
func WeekStart(now time.Time) time.Time {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return midnight.AddDate(0, 0, -int(now.Weekday()))
}

// WeeklyStreak counts consecutive weeks, from the current one backwards,
// with at least StreakMinWorkouts completed workouts.
func WeeklyStreak(completions map[string]types.WorkoutCompletion, now time.Time) int {
	perWeek := make(map[string]int)
	for key, c := range completions {
		if !c.Completed {
			continue
		}
		d, err := time.ParseInLocation(openapi_types.DateFormat, key, now.Location())
		if err != nil {
			continue
		}
		perWeek[WeekStart(d).Format(openapi_types.DateFormat)]++
	}

	streak := 0
	start := WeekStart(now)
	for i := 0; i < StreakLookbackWeeks; i++ {
		week := start.AddDate(0, 0, -7*i).Format(openapi_types.DateFormat)
		if perWeek[week] < StreakMinWorkouts {
			break
		}
		streak++
	}
	return streak
}

// ParseCalories reads the leading integer of a "300-400" style estimate.
// It returns 0 when there is none or it does not fit an int.
func ParseCalories(s string) int {
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if end == -1 {
		end = len(s)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
