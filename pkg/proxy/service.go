// Package proxy implements the AI endpoints independently of transport.
// Functions in the functions/ tree decode requests, call a Service method
// and encode the result.
package proxy

import (
	"context"
	"log/slog"
	"time"

	"github.com/fitai/fitai-server/pkg/ai"
	apperrors "github.com/fitai/fitai-server/pkg/errors"
	"github.com/fitai/fitai-server/pkg/fallback"
	"github.com/fitai/fitai-server/pkg/normalizer"
	"github.com/fitai/fitai-server/pkg/types"
)

// DefaultMealPlanTimeout bounds the dashboard meal plan call.
const DefaultMealPlanTimeout = 20 * time.Second

// Response sources.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
	SourceTemplate = "template"
)

// Meta describes how a response was produced.
type Meta struct {
	Source     string                `json:"source"`
	Confidence normalizer.Confidence `json:"confidence,omitempty"`
	Strategy   string                `json:"strategy,omitempty"`
	Defaulted  []string              `json:"defaulted,omitempty"`
	Error      string                `json:"error,omitempty"`
}

func metaFrom[T any](res normalizer.Result[T]) Meta {
	m := Meta{
		Source:     SourceAI,
		Confidence: res.Confidence,
		Strategy:   res.Strategy,
		Defaulted:  res.Defaulted(),
	}
	if res.Synthetic() {
		m.Source = SourceTemplate
	}
	return m
}

// Service answers the AI endpoints. A nil generator is allowed: chat falls
// back to canned answers, the dashboard flows return templates and the
// JSON generators report AI_NOT_CONFIGURED.
type Service struct {
	gen             ai.Generator
	catalog         *ai.Catalog
	responder       *fallback.Responder
	mealPlanTimeout time.Duration
	logger          *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCatalog overrides the prompt catalogue.
func WithCatalog(c *ai.Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

// WithResponder overrides the chat fallback responder.
func WithResponder(r *fallback.Responder) Option {
	return func(s *Service) { s.responder = r }
}

// WithMealPlanTimeout overrides DefaultMealPlanTimeout.
func WithMealPlanTimeout(d time.Duration) Option {
	return func(s *Service) { s.mealPlanTimeout = d }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService builds a Service around gen, which may be nil.
func NewService(gen ai.Generator, opts ...Option) *Service {
	s := &Service{
		gen:             gen,
		catalog:         ai.DefaultCatalog(),
		responder:       fallback.Default(),
		mealPlanTimeout: DefaultMealPlanTimeout,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether an AI generator is available.
func (s *Service) Configured() bool {
	return s.gen != nil
}

// Chat answers a conversation. The persona is prepended when the caller
// sent no system message. A missing message list is a validation error. Generator failures degrade to the fallback
// responder rather than an error.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (types.ChatMessage, Meta, error) {
	if err := req.validate(); err != nil {
		return types.ChatMessage{}, Meta{}, err
	}

	// an empty conversation gets the greeting without a model call
	if s.gen == nil || len(req.Messages) == 0 {
		return s.responder.Respond(req.Query()), Meta{Source: SourceFallback}, nil
	}

	messages := req.Messages
	if !req.hasSystem() {
		persona, err := s.catalog.Render(ai.PromptChatPersona, nil)
		if err != nil {
			return types.ChatMessage{}, Meta{}, apperrors.Wrap(err, apperrors.CodeInternalError, "render persona")
		}
		messages = append(persona, messages...)
	}

	msg, err := s.gen.Generate(ctx, messages, ai.ChatOptions())
	if err != nil {
		s.logger.WarnContext(ctx, "chat generation failed, using fallback", "error", err, "code", apperrors.GetCode(err))
		return s.responder.Respond(req.Query()), Meta{Source: SourceFallback, Error: apperrors.PublicMessage(err)}, nil
	}
	return msg, Meta{Source: SourceAI}, nil
}

// AnalyzeFood estimates nutrition for a food photo or name.
func (s *Service) AnalyzeFood(ctx context.Context, req FoodRequest) (types.FoodAnalysis, Meta, error) {
	if err := req.validate(); err != nil {
		return types.FoodAnalysis{}, Meta{}, err
	}

	prompt, data := ai.PromptAnalyzeFoodName, map[string]any{"FoodName": req.FoodName, "UserGoal": req.UserGoal}
	opts := ai.GenerateOptions()
	if req.ImageURL != "" {
		prompt = ai.PromptAnalyzeFoodImage
		opts.ImageURL = req.ImageURL
	}

	text, err := s.generate(ctx, prompt, data, opts)
	if err != nil {
		return types.FoodAnalysis{}, Meta{}, err
	}
	res := normalizer.NormalizeFoodAnalysis(text)
	if !res.OK {
		return types.FoodAnalysis{}, Meta{}, s.badResponse(ctx, "food analysis", res.Trace)
	}
	return res.Value, metaFrom(res), nil
}

// GenerateDiet builds a one-day diet plan for the user.
func (s *Service) GenerateDiet(ctx context.Context, req DietRequest) (types.DietPlan, Meta, error) {
	if err := req.validate(); err != nil {
		return types.DietPlan{}, Meta{}, err
	}

	text, err := s.generate(ctx, ai.PromptGenerateDiet, req, ai.GenerateOptions())
	if err != nil {
		return types.DietPlan{}, Meta{}, err
	}
	res := normalizer.NormalizeDietPlan(text)
	if !res.OK {
		return types.DietPlan{}, Meta{}, s.badResponse(ctx, "diet plan", res.Trace)
	}
	return res.Value, metaFrom(res), nil
}

// GenerateWorkout builds a multi-day workout plan for the user.
func (s *Service) GenerateWorkout(ctx context.Context, req WorkoutRequest) (types.GeneratedWorkoutPlan, Meta, error) {
	if err := req.validate(); err != nil {
		return types.GeneratedWorkoutPlan{}, Meta{}, err
	}

	text, err := s.generate(ctx, ai.PromptGenerateWorkout, req, ai.GenerateOptions())
	if err != nil {
		return types.GeneratedWorkoutPlan{}, Meta{}, err
	}
	res := normalizer.NormalizeGeneratedWorkout(text)
	if !res.OK {
		return types.GeneratedWorkoutPlan{}, Meta{}, s.badResponse(ctx, "workout plan", res.Trace)
	}
	return res.Value, metaFrom(res), nil
}

// GenerateWeeklyPlan asks for alternative exercises over the weekly
// template. It never fails for AI reasons: without a usable answer the
// template itself is returned.
func (s *Service) GenerateWeeklyPlan(ctx context.Context, req WeeklyPlanRequest) (types.WeeklyWorkoutPlan, Meta, error) {
	data := map[string]any{
		"ExperienceLevel": req.ExperienceLevel,
		"Height":          req.Height,
		"Weight":          req.Weight,
		"Goals":           req.Goals,
		"Days":            templateDays(),
	}

	text, err := s.generate(ctx, ai.PromptWeeklySuggestions, data, ai.ChatOptions())
	if err != nil {
		s.logger.WarnContext(ctx, "weekly plan generation failed, using template", "error", err)
		res := normalizer.NormalizeWorkoutSuggestions("")
		m := metaFrom(res)
		m.Error = apperrors.PublicMessage(err)
		return res.Value, m, nil
	}

	res := normalizer.NormalizeWorkoutSuggestions(text)
	return res.Value, metaFrom(res), nil
}

// GenerateMealPlan produces meal options for one category or for all of
// them. Failures and timeouts return the backup meal plan.
func (s *Service) GenerateMealPlan(ctx context.Context, req MealPlanRequest) (types.MealPlan, Meta, error) {
	if err := req.normalize(); err != nil {
		return types.MealPlan{}, Meta{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.mealPlanTimeout)
	defer cancel()

	text, err := s.generate(ctx, ai.PromptMealPlan, map[string]any{"Category": req.Category}, ai.GenerateOptions())
	if err != nil {
		s.logger.WarnContext(ctx, "meal plan generation failed, using template", "error", err, "category", req.Category)
		res := normalizer.NormalizeMealPlan("", req.Category)
		m := metaFrom(res)
		m.Error = apperrors.PublicMessage(err)
		return res.Value, m, nil
	}

	res := normalizer.NormalizeMealPlan(text, req.Category)
	return res.Value, metaFrom(res), nil
}

func (s *Service) generate(ctx context.Context, prompt string, data any, opts ai.Options) (string, error) {
	if s.gen == nil {
		return "", apperrors.ErrAINotConfigured
	}
	messages, err := s.catalog.Render(prompt, data)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternalError, "render prompt")
	}
	msg, err := s.gen.Generate(ctx, messages, opts)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

func (s *Service) badResponse(ctx context.Context, what string, trace []normalizer.TraceEntry) error {
	s.logger.ErrorContext(ctx, "unparseable AI response", "kind", what, "trace", trace)
	err := apperrors.ErrAIBadResponse.WithMessage("Failed to parse " + what + " from AI response")
	if len(trace) > 0 {
		err = err.WithMetadata("last_strategy", trace[len(trace)-1].Strategy)
	}
	return err
}
