package mocks

import (
	"context"
	"sync"

	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/fitai/fitai-server/pkg/ai"
	apperrors "github.com/fitai/fitai-server/pkg/errors"
	"github.com/fitai/fitai-server/pkg/types"
)

// --- Mock Database ---
type MockDatabase struct {
	SetExecutionFunc    func(ctx context.Context, record *types.ExecutionRecord) error
	UpdateExecutionFunc func(ctx context.Context, id string, data map[string]interface{}) error

	GetProfileFunc  func(ctx context.Context, userID string) (*types.UserProfile, error)
	SaveProfileFunc func(ctx context.Context, userID string, data map[string]interface{}) error

	IncrementGenerationCountFunc func(ctx context.Context, userID string) error
	ResetGenerationCountFunc     func(ctx context.Context, userID string) error

	GetWorkoutPlanFunc  func(ctx context.Context, userID string) (*types.StoredWorkoutPlan, error)
	SaveWorkoutPlanFunc func(ctx context.Context, userID string, plan types.WeeklyWorkoutPlan) error

	GetCompletionsFunc func(ctx context.Context, userID string) (map[string]types.WorkoutCompletion, error)
	SetCompletionFunc  func(ctx context.Context, userID string, completion types.WorkoutCompletion) error
}

func (m *MockDatabase) SetExecution(ctx context.Context, record *types.ExecutionRecord) error {
	if m.SetExecutionFunc != nil {
		return m.SetExecutionFunc(ctx, record)
	}
	return nil
}
func (m *MockDatabase) UpdateExecution(ctx context.Context, id string, data map[string]interface{}) error {
	if m.UpdateExecutionFunc != nil {
		return m.UpdateExecutionFunc(ctx, id, data)
	}
	return nil
}

func (m *MockDatabase) GetProfile(ctx context.Context, userID string) (*types.UserProfile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *MockDatabase) SaveProfile(ctx context.Context, userID string, data map[string]interface{}) error {
	if m.SaveProfileFunc != nil {
		return m.SaveProfileFunc(ctx, userID, data)
	}
	return nil
}

// --- Generation Count (for tier limits) ---

func (m *MockDatabase) IncrementGenerationCount(ctx context.Context, userID string) error {
	if m.IncrementGenerationCountFunc != nil {
		return m.IncrementGenerationCountFunc(ctx, userID)
	}
	return nil
}

func (m *MockDatabase) ResetGenerationCount(ctx context.Context, userID string) error {
	if m.ResetGenerationCountFunc != nil {
		return m.ResetGenerationCountFunc(ctx, userID)
	}
	return nil
}

func (m *MockDatabase) GetWorkoutPlan(ctx context.Context, userID string) (*types.StoredWorkoutPlan, error) {
	if m.GetWorkoutPlanFunc != nil {
		return m.GetWorkoutPlanFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockDatabase) SaveWorkoutPlan(ctx context.Context, userID string, plan types.WeeklyWorkoutPlan) error {
	if m.SaveWorkoutPlanFunc != nil {
		return m.SaveWorkoutPlanFunc(ctx, userID, plan)
	}
	return nil
}

func (m *MockDatabase) GetCompletions(ctx context.Context, userID string) (map[string]types.WorkoutCompletion, error) {
	if m.GetCompletionsFunc != nil {
		return m.GetCompletionsFunc(ctx, userID)
	}
	return map[string]types.WorkoutCompletion{}, nil
}

func (m *MockDatabase) SetCompletion(ctx context.Context, userID string, completion types.WorkoutCompletion) error {
	if m.SetCompletionFunc != nil {
		return m.SetCompletionFunc(ctx, userID, completion)
	}
	return nil
}

// --- Mock Publisher ---
type MockPublisher struct {
	PublishCloudEventFunc func(ctx context.Context, topic string, e event.Event) (string, error)
}

func (m *MockPublisher) PublishCloudEvent(ctx context.Context, topic string, e event.Event) (string, error) {
	if m.PublishCloudEventFunc != nil {
		return m.PublishCloudEventFunc(ctx, topic, e)
	}
	return "msg-id", nil
}

// --- Mock Storage ---
type MockBlobStore struct {
	WriteFunc func(ctx context.Context, bucket, object string, data []byte) error
	ReadFunc  func(ctx context.Context, bucket, object string) ([]byte, error)
}

func (m *MockBlobStore) Write(ctx context.Context, bucket, object string, data []byte) error {
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, bucket, object, data)
	}
	return nil
}
func (m *MockBlobStore) Read(ctx context.Context, bucket, object string) ([]byte, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, bucket, object)
	}
	return []byte("mock-data"), nil
}

// --- Mock Secrets ---
type MockSecretStore struct {
	GetSecretFunc func(ctx context.Context, projectID, name string) (string, error)
}

func (m *MockSecretStore) GetSecret(ctx context.Context, projectID, name string) (string, error) {
	if m.GetSecretFunc != nil {
		return m.GetSecretFunc(ctx, projectID, name)
	}
	return "mock-secret", nil
}

// --- Mock Generator ---

// MockGenerator records every call. Without GenerateFunc it answers with
// Response, or with an empty assistant message.
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, messages []types.ChatMessage, opts ai.Options) (types.ChatMessage, error)
	Response     string

	mu    sync.Mutex
	calls []GenerateCall
}

// GenerateCall is one recorded Generate invocation.
type GenerateCall struct {
	Messages []types.ChatMessage
	Options  ai.Options
}

func (m *MockGenerator) Generate(ctx context.Context, messages []types.ChatMessage, opts ai.Options) (types.ChatMessage, error) {
	m.mu.Lock()
	m.calls = append(m.calls, GenerateCall{Messages: messages, Options: opts})
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, messages, opts)
	}
	return types.ChatMessage{Role: types.RoleAssistant, Content: m.Response}, nil
}

// Calls returns the recorded invocations.
func (m *MockGenerator) Calls() []GenerateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GenerateCall(nil), m.calls...)
}
