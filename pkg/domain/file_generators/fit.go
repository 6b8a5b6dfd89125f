package file_generators

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/muktihari/fit/encoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/proto"

	"github.com/fitai/fitai-server/pkg/domain/exercise"
	"github.com/fitai/fitai-server/pkg/types"
)

// Duration estimates for a set, used when the plan has no timings.
const (
	SetDuration  = 40 * time.Second
	RestDuration = 60 * time.Second
)

// EstimateDuration returns the expected length of a day's workout.
func EstimateDuration(day types.DayWorkout) time.Duration {
	var total time.Duration
	for _, ex := range day.Exercises {
		sets := max(ex.Sets, 1)
		total += time.Duration(sets) * (SetDuration + RestDuration)
	}
	return total
}

// GenerateWorkoutFit creates a FIT activity file for a completed day of
// the weekly plan. Each planned set becomes one Set message, laid out
// back to back from start.
func GenerateWorkoutFit(start time.Time, day types.DayWorkout) ([]byte, error) {
	if len(day.Exercises) == 0 {
		return nil, fmt.Errorf("workout %q has no exercises", day.WorkoutName)
	}
	start = start.UTC()

	fit := &proto.FIT{
		Messages: []proto.Message{},
	}

	// 1. FileId message
	fileId := mesgdef.NewFileId(nil).
		SetType(typedef.FileActivity).
		SetManufacturer(typedef.ManufacturerDevelopment).
		SetProduct(1).
		SetTimeCreated(start)
	fit.Messages = append(fit.Messages, fileId.ToMesg(nil))

	// 2. Set messages, one per planned set
	cursor := start
	index := 0
	for _, ex := range day.Exercises {
		category := exercise.Category(ex.Name)
		for s := 0; s < max(ex.Sets, 1); s++ {
			setMsg := mesgdef.NewSet(nil).
				SetTimestamp(cursor.Add(SetDuration)).
				SetStartTime(cursor).
				SetCategory([]typedef.ExerciseCategory{category}).
				SetSetType(typedef.SetTypeActive).
				SetDuration(uint32(SetDuration.Milliseconds())).
				SetMessageIndex(typedef.MessageIndex(index))
			if ex.Reps > 0 {
				setMsg.SetRepetitions(uint16(ex.Reps))
			}
			fit.Messages = append(fit.Messages, setMsg.ToMesg(nil))

			cursor = cursor.Add(SetDuration + RestDuration)
			index++
		}
	}

	elapsed := uint32(cursor.Sub(start).Milliseconds())
	end := cursor

	// 3. Lap message
	lapMsg := mesgdef.NewLap(nil).
		SetTimestamp(end).
		SetStartTime(start).
		SetSport(typedef.SportTraining).
		SetTotalElapsedTime(elapsed).
		SetTotalTimerTime(elapsed).
		SetMessageIndex(0)
	fit.Messages = append(fit.Messages, lapMsg.ToMesg(nil))

	// 4. Summary messages (Session, Activity) at the end
	sessionMsg := mesgdef.NewSession(nil).
		SetTimestamp(end).
		SetStartTime(start).
		SetSport(typedef.SportTraining).
		SetTotalElapsedTime(elapsed).
		SetTotalTimerTime(elapsed).
		SetNumLaps(1)
	if kcal := parseCalories(day.CaloriesBurned); kcal > 0 {
		sessionMsg.SetTotalCalories(uint16(kcal))
	}
	fit.Messages = append(fit.Messages, sessionMsg.ToMesg(nil))

	activityMsg := mesgdef.NewActivity(nil).
		SetTimestamp(end).
		SetType(typedef.ActivityManual).
		SetTotalTimerTime(elapsed).
		SetNumSessions(1)
	fit.Messages = append(fit.Messages, activityMsg.ToMesg(nil))

	var buf bytes.Buffer
	enc := encoder.New(&buf)
	if err := enc.Encode(fit); err != nil {
		return nil, fmt.Errorf("failed to encode FIT file: %w", err)
	}
	return buf.Bytes(), nil
}

// parseCalories reads the leading integer of a "300-400" style range.
// Digit runs too long for an int read as 0.
func parseCalories(s string) int {
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
