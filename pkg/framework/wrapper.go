package framework

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/rs/cors"

	"github.com/fitai/fitai-server/pkg/bootstrap"
	apperrors "github.com/fitai/fitai-server/pkg/errors"
	"github.com/fitai/fitai-server/pkg/execution"
	"github.com/fitai/fitai-server/pkg/session"
	"github.com/fitai/fitai-server/pkg/types"
)

// PubSubMessagePublished is the CloudEvent type Eventarc uses for Pub/Sub pushes.
const PubSubMessagePublished = "google.cloud.pubsub.topic.v1.messagePublished"

// SourceHeader reports whether a response came from the AI or a fallback.
const SourceHeader = "X-FitAI-Source"

// FrameworkContext is passed to every wrapped handler
type FrameworkContext struct {
	Service     *bootstrap.Service
	Logger      *slog.Logger
	ExecutionID string
	// Session is the verified caller. Nil for CloudEvents and for
	// anonymous HTTP requests.
	Session *session.Session
}

// UserID returns the session UID, or "".
func (f *FrameworkContext) UserID() string {
	if f.Session == nil {
		return ""
	}
	return f.Session.UID
}

// CloudEventHandler is the signature for a CloudEvent function handler.
// Returns outputs (for logging) and error
type CloudEventHandler func(ctx context.Context, e event.Event, fwCtx *FrameworkContext) (interface{}, error)

// WrapCloudEvent wraps a handler with automatic execution logging. Pub/Sub
// envelopes carrying a CloudEvent are unwrapped before the handler runs.
func WrapCloudEvent(serviceName string, svc *bootstrap.Service, handler CloudEventHandler) func(context.Context, event.Event) error {
	return func(ctx context.Context, e event.Event) error {
		logger := slog.With("service", serviceName)

		execID, err := execution.LogPending(ctx, svc.DB, serviceName, execution.ExecutionOptions{
			TriggerType: execution.TriggerCloudEvent,
		})
		if err != nil {
			logger.Error("Failed to log execution pending", "error", err)
			// Continue anyway - don't fail the function just because logging failed
		}

		logger = logger.With("execution_id", execID)

		inner := unwrapPubSub(e, logger)
		if err := execution.LogStart(ctx, svc.DB, execID, map[string]string{"event_id": inner.ID(), "event_type": inner.Type()}, nil); err != nil {
			logger.Warn("Failed to log execution start", "error", err)
		}
		logger.Info("Function started", "event_id", inner.ID(), "event_type", inner.Type())

		fwCtx := &FrameworkContext{Service: svc, Logger: logger, ExecutionID: execID}
		outputs, handlerErr := handler(ctx, inner, fwCtx)

		if handlerErr != nil {
			logger.Error("Function failed", "error", handlerErr)
			if logErr := execution.LogFailure(ctx, svc.DB, execID, handlerErr, outputs); logErr != nil {
				logger.Warn("Failed to log execution failure", "error", logErr)
			}
			return handlerErr
		}

		logger.Info("Function completed successfully")
		if logErr := execution.LogSuccess(ctx, svc.DB, execID, outputs); logErr != nil {
			logger.Warn("Failed to log execution success", "error", logErr)
		}
		return nil
	}
}

// unwrapPubSub returns the CloudEvent published inside a Pub/Sub push, or e
// itself when it is not an envelope around one.
func unwrapPubSub(e event.Event, logger *slog.Logger) event.Event {
	if e.Type() != PubSubMessagePublished {
		return e
	}
	var msg types.PubSubMessage
	if err := e.DataAs(&msg); err != nil {
		logger.Warn("Failed to decode Pub/Sub envelope", "error", err)
		return e
	}
	var inner event.Event
	if err := json.Unmarshal(msg.Message.Data, &inner); err != nil || inner.Validate() != nil {
		return e
	}
	return inner
}

// HTTPHandler is the signature for an HTTP function handler. A non-nil
// output is written as the JSON response.
type HTTPHandler func(w http.ResponseWriter, r *http.Request, fwCtx *FrameworkContext) (interface{}, error)

// HTTPOptions configure WrapHTTP.
type HTTPOptions struct {
	Methods     []string
	RequireAuth bool
}

// ErrorResponse is the JSON body of a failed HTTP call.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// WrapHTTP wraps an HTTP handler with CORS, session resolution, execution
// logging and JSON error mapping.
func WrapHTTP(serviceName string, svc *bootstrap.Service, opts HTTPOptions, handler HTTPHandler) http.Handler {
	methods := opts.Methods
	if len(methods) == 0 {
		methods = []string{http.MethodPost}
	}

	origins := []string{"*"}
	if svc.Config != nil && len(svc.Config.AllowedOrigins) > 0 {
		origins = svc.Config.AllowedOrigins
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: methods,
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{SourceHeader},
		MaxAge:         3600,
	})

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With("service", serviceName)

		if !slices.Contains(methods, r.Method) {
			w.Header().Set("Allow", strings.Join(methods, ", "))
			WriteError(w, apperrors.ErrValidation.WithMessage("method not allowed"), http.StatusMethodNotAllowed)
			return
		}

		sess, err := resolveSession(r, svc.Sessions, opts.RequireAuth)
		if err != nil {
			logger.Warn("Unauthorized request", "error", err)
			WriteError(w, err, 0)
			return
		}

		ctx := r.Context()
		userID := ""
		if sess != nil {
			userID = sess.UID
			ctx = session.NewContext(ctx, sess)
			r = r.WithContext(ctx)
		}

		execID, err := execution.LogPending(ctx, svc.DB, serviceName, execution.ExecutionOptions{
			UserID:      userID,
			TriggerType: execution.TriggerHTTP,
		})
		if err != nil {
			logger.Error("Failed to log execution pending", "error", err)
		}
		logger = logger.With("execution_id", execID)
		if userID != "" {
			logger = logger.With("user_id", userID)
		}
		logger.Info("Function started", "method", r.Method)

		fwCtx := &FrameworkContext{Service: svc, Logger: logger, ExecutionID: execID, Session: sess}
		outputs, handlerErr := handler(w, r, fwCtx)

		if handlerErr != nil {
			logger.Error("Function failed", "error", handlerErr, "code", apperrors.GetCode(handlerErr))
			if logErr := execution.LogFailure(ctx, svc.DB, execID, handlerErr, nil); logErr != nil {
				logger.Warn("Failed to log execution failure", "error", logErr)
			}
			WriteError(w, handlerErr, 0)
			return
		}

		logger.Info("Function completed successfully")
		if logErr := execution.LogSuccess(ctx, svc.DB, execID, outputs); logErr != nil {
			logger.Warn("Failed to log execution success", "error", logErr)
		}
		if outputs != nil {
			WriteJSON(w, http.StatusOK, outputs)
		}
	})

	return c.Handler(inner)
}

func resolveSession(r *http.Request, v session.Verifier, required bool) (*session.Session, error) {
	if v == nil {
		if required {
			return nil, session.ErrMissingToken
		}
		return nil, nil
	}
	if _, ok := session.BearerToken(r.Header.Get("Authorization")); !ok && !required {
		if _, dev := v.(session.DevVerifier); !dev {
			return nil, nil
		}
	}
	return session.FromRequest(r, v)
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// WriteError writes an ErrorResponse. A zero status is derived from the
// error code.
func WriteError(w http.ResponseWriter, err error, status int) {
	code := apperrors.GetCode(err)
	if status == 0 {
		status = apperrors.HTTPStatus(code)
	}
	WriteJSON(w, status, ErrorResponse{Error: apperrors.PublicMessage(err), Code: string(code)})
}

// DecodeJSON reads the request body into v. An invalid body is a
// validation error.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return apperrors.ErrValidation.WithMessage("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.ErrValidation.WithMessage("invalid JSON body").WithCause(err)
	}
	return nil
}
