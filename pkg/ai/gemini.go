package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"google.golang.org/genai"

	shared "github.com/fitai/fitai-server/pkg"
	apperrors "github.com/fitai/fitai-server/pkg/errors"
	"github.com/fitai/fitai-server/pkg/types"
)

// SystemAcknowledgement is the model turn inserted after the system prompt.
const SystemAcknowledgement = "I understand. I'll act as a fitness trainer providing helpful, evidence-based information."

const (
	defaultTopP float32 = 0.8
	defaultTopK float32 = 40
)

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient implements Generator on the Gemini API.
type GeminiClient struct {
	models  contentGenerator
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGeminiClient creates a client for the Gemini API. An empty model
// selects the default.
func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, apperrors.ErrAINotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperrors.ErrAIUnavailable.WithCause(fmt.Errorf("create genai client: %w", err))
	}
	return newGeminiClient(client.Models, model, timeout), nil
}

func newGeminiClient(models contentGenerator, model string, timeout time.Duration) *GeminiClient {
	if model == "" {
		model = shared.DefaultGeminiModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GeminiClient{
		models:  models,
		model:   model,
		timeout: timeout,
		logger:  slog.Default().With("component", "gemini"),
	}
}

// Model returns the model name requests are sent to.
func (c *GeminiClient) Model() string { return c.model }

// Generate sends the conversation to Gemini and returns the first
// candidate's text as an assistant message.
func (c *GeminiClient) Generate(ctx context.Context, messages []types.ChatMessage, opts Options) (types.ChatMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := FormatMessages(messages, opts.ImageURL)
	if len(contents) == 0 {
		return types.ChatMessage{}, apperrors.ErrValidation.WithMessage("no messages to send")
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, contents, GenerationConfig(opts))
	if err != nil {
		classified := ClassifyError(ctx, err)
		c.logger.Error("Gemini request failed",
			"model", c.model,
			"code", apperrors.GetCode(classified),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return types.ChatMessage{}, classified
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return types.ChatMessage{}, apperrors.ErrAIEmptyResponse
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		reason := ""
		if fr := resp.Candidates[0].FinishReason; fr != "" {
			reason = string(fr)
		}
		return types.ChatMessage{}, apperrors.ErrAIEmptyResponse.WithMetadata("finish_reason", reason)
	}

	c.logger.Debug("Gemini request completed",
		"model", c.model,
		"messages", len(contents),
		"response_chars", len(text),
		"duration_ms", time.Since(start).Milliseconds())

	return types.ChatMessage{Role: types.RoleAssistant, Content: text}, nil
}

// FormatMessages converts chat messages to Gemini contents. The first
// system message becomes a user turn followed by a fixed model
// acknowledgement; later system messages are dropped. Assistant turns
// map to the model role and everything else to the user role.
func FormatMessages(messages []types.ChatMessage, imageURL string) []*genai.Content {
	var contents []*genai.Content

	for _, m := range messages {
		if m.Role == types.RoleSystem && m.Content != "" {
			contents = append(contents,
				genai.NewContentFromText(m.Content, genai.RoleUser),
				genai.NewContentFromText(SystemAcknowledgement, genai.RoleModel))
			break
		}
	}

	imageAttached := imageURL == ""
	for _, m := range messages {
		if m.Role == types.RoleSystem {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if m.Role == types.RoleAssistant {
			role = genai.RoleModel
		}
		parts := []*genai.Part{genai.NewPartFromText(m.Content)}
		if !imageAttached && role == genai.RoleUser {
			parts = append(parts, genai.NewPartFromURI(imageURL, imageMIMEType(imageURL)))
			imageAttached = true
		}
		contents = append(contents, genai.NewContentFromParts(parts, role))
	}
	return contents
}

// GenerationConfig builds the request config with the fixed sampling and
// safety settings.
func GenerationConfig(opts Options) *genai.GenerateContentConfig {
	maxTokens := opts.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = ChatMaxTokens
	}
	threshold := genai.HarmBlockThresholdBlockMediumAndAbove
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		TopP:            genai.Ptr(defaultTopP),
		TopK:            genai.Ptr(defaultTopK),
		MaxOutputTokens: maxTokens,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: threshold},
			{Category: genai.HarmCategoryHateSpeech, Threshold: threshold},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: threshold},
			{Category: genai.HarmCategoryDangerousContent, Threshold: threshold},
		},
	}
}

// ClassifyError maps a Gemini API failure to an application error.
func ClassifyError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.ErrTimeout.WithCause(err).WithMessage("AI service timed out")
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return apperrors.ErrAIModelNotFound.WithCause(err)
		case http.StatusForbidden:
			return apperrors.ErrAIPermissionDenied.WithCause(err)
		case http.StatusTooManyRequests:
			return apperrors.ErrAIRateLimited.WithCause(err)
		}
		return apperrors.ErrAIUnavailable.WithCause(err).
			WithMessage(fmt.Sprintf("AI service error: %d", apiErr.Code))
	}
	return apperrors.ErrAIUnavailable.WithCause(err)
}

func imageMIMEType(url string) string {
	ext := path.Ext(strings.SplitN(url, "?", 2)[0])
	if t := mime.TypeByExtension(strings.ToLower(ext)); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/jpeg"
}
