package pubsub

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitai/fitai-server/pkg/types"
)

func TestNewCloudEvent(t *testing.T) {
	data := types.WorkoutCompletedEvent{UserID: "u1", Date: "2026-03-02", Weekday: "monday", CaloriesBurned: 300}

	e, err := NewCloudEvent("/progress", "com.fitai.workout.completed", data)

	require.NoError(t, err)
	assert.NotEmpty(t, e.ID())
	assert.Equal(t, "1.0", e.SpecVersion())
	assert.Equal(t, "com.fitai.workout.completed", e.Type())
	assert.Equal(t, "application/json", e.DataContentType())

	var got types.WorkoutCompletedEvent
	require.NoError(t, json.Unmarshal(e.Data(), &got))
	assert.Equal(t, data, got)

	other, err := NewCloudEvent("/progress", "com.fitai.workout.completed", data)
	require.NoError(t, err)
	assert.NotEqual(t, e.ID(), other.ID())
}

func TestAttributes(t *testing.T) {
	e, err := NewCloudEvent("/progress", "com.fitai.workout.completed", map[string]string{})
	require.NoError(t, err)

	attrs := Attributes(e)
	assert.Equal(t, e.ID(), attrs["ce-id"])
	assert.Equal(t, "com.fitai.workout.completed", attrs["ce-type"])
	assert.Equal(t, "/progress", attrs["ce-source"])
}

func TestLogPublisher(t *testing.T) {
	e, err := NewCloudEvent("/test", "test.event", map[string]int{"n": 1})
	require.NoError(t, err)

	id, err := (&LogPublisher{}).PublishCloudEvent(context.Background(), "topic", e)
	require.NoError(t, err)
	assert.Equal(t, "mock-msg-id", id)
}
