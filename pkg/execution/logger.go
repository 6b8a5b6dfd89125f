package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fitai/fitai-server/pkg/types"
)

// Database interface for Firestore operations
type Database interface {
	SetExecution(ctx context.Context, record *types.ExecutionRecord) error
	UpdateExecution(ctx context.Context, id string, data map[string]interface{}) error
}

// Trigger types recorded on an execution.
const (
	TriggerHTTP       = "http"
	TriggerCloudEvent = "cloudevent"
)

// ExecutionOptions contains optional fields for execution logging
type ExecutionOptions struct {
	UserID      string
	TriggerType string
	Inputs      interface{}
}

// NewExecutionID returns a unique, service-prefixed execution ID.
func NewExecutionID(service string) string {
	return fmt.Sprintf("%s-%s", service, uuid.NewString())
}

func encodeJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// LogPending creates an execution record with PENDING status and captured inputs
func LogPending(ctx context.Context, db Database, service string, opts ExecutionOptions) (string, error) {
	execID := NewExecutionID(service)
	now := time.Now().UTC()

	record := &types.ExecutionRecord{
		ExecutionID: execID,
		Service:     service,
		Status:      types.ExecutionStatusPending,
		Timestamp:   now,
		StartTime:   now,
		UserID:      opts.UserID,
		TriggerType: opts.TriggerType,
		InputsJSON:  encodeJSON(opts.Inputs),
	}

	if err := db.SetExecution(ctx, record); err != nil {
		return execID, fmt.Errorf("failed to log execution pending: %w", err)
	}
	return execID, nil
}

// LogStart updates an execution record to STARTED status and adds inputs/metadata
func LogStart(ctx context.Context, db Database, execID string, inputs interface{}, opts *ExecutionOptions) error {
	updates := map[string]interface{}{
		"status":     types.ExecutionStatusStarted.String(),
		"start_time": time.Now().UTC(),
	}

	// Metadata that wasn't available at Pending time, e.g. the session user
	if opts != nil {
		if opts.UserID != "" {
			updates["user_id"] = opts.UserID
		}
		if opts.TriggerType != "" {
			updates["trigger_type"] = opts.TriggerType
		}
	}
	if s := encodeJSON(inputs); s != "" {
		updates["inputs_json"] = s
	}

	if err := db.UpdateExecution(ctx, execID, updates); err != nil {
		return fmt.Errorf("failed to log execution start: %w", err)
	}
	return nil
}

// LogSuccess updates an execution record with SUCCESS status
func LogSuccess(ctx context.Context, db Database, execID string, outputs interface{}) error {
	return finish(ctx, db, execID, types.ExecutionStatusSuccess, nil, outputs)
}

// LogFailure updates an execution record with FAILED status
func LogFailure(ctx context.Context, db Database, execID string, err error, outputs interface{}) error {
	return finish(ctx, db, execID, types.ExecutionStatusFailed, err, outputs)
}

// LogExecutionStatus updates an execution record with a custom status
func LogExecutionStatus(ctx context.Context, db Database, execID string, status types.ExecutionStatus, outputs interface{}) error {
	return finish(ctx, db, execID, status, nil, outputs)
}

func finish(ctx context.Context, db Database, execID string, status types.ExecutionStatus, cause error, outputs interface{}) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":    status.String(),
		"timestamp": now,
		"end_time":  now,
	}
	if cause != nil {
		updates["error_message"] = cause.Error()
	}
	if s := encodeJSON(outputs); s != "" {
		updates["outputs_json"] = s
	}

	if err := db.UpdateExecution(ctx, execID, updates); err != nil {
		return fmt.Errorf("failed to log execution %s: %w", status, err)
	}
	return nil
}
