package types

import "time"

// ExecutionStatus tracks the lifecycle of a function invocation.
type ExecutionStatus int32

const (
	ExecutionStatusUnspecified ExecutionStatus = iota
	ExecutionStatusPending
	ExecutionStatusStarted
	ExecutionStatusSuccess
	ExecutionStatusFailed
)

func (s ExecutionStatus) String() string {
	switch s {
	case ExecutionStatusPending:
		return "PENDING"
	case ExecutionStatusStarted:
		return "STARTED"
	case ExecutionStatusSuccess:
		return "SUCCESS"
	case ExecutionStatusFailed:
		return "FAILED"
	}
	return "UNSPECIFIED"
}

// ExecutionRecord is stored in the executions collection.
type ExecutionRecord struct {
	ExecutionID  string          `firestore:"execution_id"`
	Service      string          `firestore:"service"`
	Status       ExecutionStatus `firestore:"status"`
	Timestamp    time.Time       `firestore:"timestamp"`
	StartTime    time.Time       `firestore:"start_time"`
	EndTime      *time.Time      `firestore:"end_time,omitempty"`
	UserID       string          `firestore:"user_id,omitempty"`
	TriggerType  string          `firestore:"trigger_type"`
	InputsJSON   string          `firestore:"inputs_json,omitempty"`
	OutputsJSON  string          `firestore:"outputs_json,omitempty"`
	ErrorMessage string          `firestore:"error_message,omitempty"`
}
