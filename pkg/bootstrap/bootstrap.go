package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"

	shared "github.com/fitai/fitai-server/pkg"
	"github.com/fitai/fitai-server/pkg/ai"
	"github.com/fitai/fitai-server/pkg/infrastructure/database"
	infrapubsub "github.com/fitai/fitai-server/pkg/infrastructure/pubsub"
	"github.com/fitai/fitai-server/pkg/infrastructure/secrets"
	infrastorage "github.com/fitai/fitai-server/pkg/infrastructure/storage"
	"github.com/fitai/fitai-server/pkg/proxy"
	"github.com/fitai/fitai-server/pkg/session"
)

// Config holds standard configuration for all services
type Config struct {
	ProjectID         string
	EnablePublish     bool
	GCSArtifactBucket string

	GeminiModel    string
	AITimeout      time.Duration
	AllowedOrigins []string

	FirebaseProjectID string
	// DevAuthBypassUID replaces token verification with a fixed session.
	// Local runs only.
	DevAuthBypassUID string

	LogLevel slog.Level
}

// Service holds initialized dependencies
type Service struct {
	DB       shared.Database
	Store    shared.BlobStore
	Pub      shared.Publisher
	Secrets  shared.SecretStore
	AI       *proxy.Service
	Sessions session.Verifier
	Config   *Config
}

// LoadConfig reads configuration from environment variables
func LoadConfig() *Config {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		projectID = shared.ProjectID // Fallback
	}

	firebaseProject := os.Getenv("FIREBASE_PROJECT_ID")
	if firebaseProject == "" {
		firebaseProject = projectID
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = shared.DefaultGeminiModel
	}

	timeout := ai.DefaultTimeout
	if v := os.Getenv("AI_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			timeout = d
		}
	}

	return &Config{
		ProjectID:         projectID,
		EnablePublish:     os.Getenv("ENABLE_PUBLISH") == "true",
		GCSArtifactBucket: os.Getenv("GCS_ARTIFACT_BUCKET"),
		GeminiModel:       model,
		AITimeout:         timeout,
		AllowedOrigins:    splitList(os.Getenv("ALLOWED_ORIGINS"), "*"),
		FirebaseProjectID: firebaseProject,
		DevAuthBypassUID:  os.Getenv("DEV_AUTH_BYPASS_UID"),
		LogLevel:          ParseLevel(os.Getenv("LOG_LEVEL")),
	}
}

func splitList(v, def string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{def}
	}
	return out
}

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values are Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetSlogHandlerOptions returns standard handler options for GCP
func GetSlogHandlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Map standard keys to Cloud Logging keys
			if len(groups) == 0 && a.Key == slog.MessageKey {
				return slog.Attr{Key: "message", Value: a.Value}
			}
			if len(groups) == 0 && a.Key == slog.LevelKey {
				return slog.Attr{Key: "severity", Value: a.Value}
			}
			return a
		},
	}
}

// ComponentHandler wraps a slog.Handler to prepend [component] to the message.
// The component comes from the record or from a logger.With("component", ...).
type ComponentHandler struct {
	slog.Handler
	component string
}

// Handle implements slog.Handler
func (h *ComponentHandler) Handle(ctx context.Context, r slog.Record) error {
	component := h.component

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			component = a.Value.String()
			return false // stop
		}
		return true
	})

	if component != "" {
		newRecord := slog.NewRecord(r.Time, r.Level, fmt.Sprintf("[%s] %s", component, r.Message), r.PC)
		r.Attrs(func(a slog.Attr) bool {
			if a.Key != "component" {
				newRecord.AddAttrs(a)
			}
			return true
		})
		r = newRecord
	}

	return h.Handler.Handle(ctx, r)
}

// WithAttrs implements slog.Handler. A component attribute is kept on the
// handler instead of being emitted.
func (h *ComponentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	component := h.component
	rest := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		if a.Key == "component" {
			component = a.Value.String()
			continue
		}
		rest = append(rest, a)
	}
	inner := h.Handler
	if len(rest) > 0 {
		inner = inner.WithAttrs(rest)
	}
	return &ComponentHandler{Handler: inner, component: component}
}

// WithGroup implements slog.Handler
func (h *ComponentHandler) WithGroup(name string) slog.Handler {
	return &ComponentHandler{Handler: h.Handler.WithGroup(name), component: h.component}
}

func newHandler(w io.Writer, level slog.Level) slog.Handler {
	return &ComponentHandler{Handler: slog.NewJSONHandler(w, GetSlogHandlerOptions(level))}
}

// InitLogger configures structured logging with Cloud Logging compatible keys
func InitLogger(level slog.Level) {
	slog.SetDefault(slog.New(newHandler(os.Stdout, level)))
}

// NewLogger creates a configured logger instance
func NewLogger(serviceName string) *slog.Logger {
	return slog.New(newHandler(os.Stdout, ParseLevel(os.Getenv("LOG_LEVEL")))).With("service", serviceName)
}

// NewVerifier returns the session verifier for cfg. The dev bypass wins
// when set.
func NewVerifier(cfg *Config) (session.Verifier, error) {
	if cfg.DevAuthBypassUID != "" {
		slog.Warn("Auth: DEV BYPASS, all requests run as a fixed user", "uid", cfg.DevAuthBypassUID)
		return session.DevVerifier{UID: cfg.DevAuthBypassUID}, nil
	}
	return session.NewFirebaseVerifier(cfg.FirebaseProjectID, nil)
}

// NewAIService builds the proxy service. Without an API key the service
// runs unconfigured: chat falls back and generation returns AI_NOT_CONFIGURED.
func NewAIService(ctx context.Context, cfg *Config, secretStore shared.SecretStore) *proxy.Service {
	logger := slog.Default().With("component", "proxy")

	apiKey, err := secretStore.GetSecret(ctx, cfg.ProjectID, shared.SecretGeminiAPIKey)
	if err != nil || apiKey == "" {
		logger.Warn("Gemini API key not available, AI disabled", "error", err)
		return proxy.NewService(nil, proxy.WithLogger(logger))
	}

	client, err := ai.NewGeminiClient(ctx, apiKey, cfg.GeminiModel, cfg.AITimeout)
	if err != nil {
		logger.Error("Gemini client init failed, AI disabled", "error", err)
		return proxy.NewService(nil, proxy.WithLogger(logger))
	}
	logger.Info("AI: Gemini", "model", client.Model(), "timeout", cfg.AITimeout.String())
	return proxy.NewService(client, proxy.WithLogger(logger))
}

// NewService initializes all standard dependencies
func NewService(ctx context.Context) (*Service, error) {
	cfg := LoadConfig()
	InitLogger(cfg.LogLevel)

	slog.Info("Initializing service", "project_id", cfg.ProjectID)

	// Firestore
	fsClient, err := firestore.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		slog.Error("Firestore init failed", "error", err)
		return nil, fmt.Errorf("firestore init: %w", err)
	}

	// Pub/Sub
	var pubAdapter shared.Publisher
	if cfg.EnablePublish {
		psClient, err := pubsub.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			slog.Error("PubSub init failed", "error", err)
			return nil, fmt.Errorf("pubsub init: %w", err)
		}
		pubAdapter = &infrapubsub.PubSubAdapter{Client: psClient}
		slog.Info("Pub/Sub: REAL (ENABLE_PUBLISH=true)")
	} else {
		pubAdapter = &infrapubsub.LogPublisher{}
		slog.Info("Pub/Sub: MOCK (LogPublisher)")
	}

	// Storage
	gcsClient, err := storage.NewClient(ctx)
	if err != nil {
		slog.Error("Storage init failed", "error", err)
		return nil, fmt.Errorf("storage init: %w", err)
	}

	verifier, err := NewVerifier(cfg)
	if err != nil {
		return nil, fmt.Errorf("session init: %w", err)
	}

	secretStore := &secrets.SecretsAdapter{}

	return &Service{
		DB:       database.NewFirestoreAdapter(fsClient),
		Pub:      pubAdapter,
		Store:    &infrastorage.StorageAdapter{Client: gcsClient},
		Secrets:  secretStore,
		AI:       NewAIService(ctx, cfg, secretStore),
		Sessions: verifier,
		Config:   cfg,
	}, nil
}
