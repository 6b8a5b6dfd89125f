package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"
	cehttp "github.com/cloudevents/sdk-go/v2/protocol/http"
	openapi_types "github.com/oapi-codegen/runtime/types"

	shared "github.com/fitai/fitai-server/pkg"
	"github.com/fitai/fitai-server/pkg/bootstrap"
	"github.com/fitai/fitai-server/pkg/domain/file_generators"
	apperrors "github.com/fitai/fitai-server/pkg/errors"
	"github.com/fitai/fitai-server/pkg/framework"
	"github.com/fitai/fitai-server/pkg/types"
)

var (
	svc     *bootstrap.Service
	svcOnce sync.Once
	svcErr  error
)

func init() {
	// Eventarc trigger on the workout completed topic
	functions.CloudEvent("ExportWorkout", ExportWorkout)

	// Push subscription variant; a 500 makes Pub/Sub retry
	functions.HTTP("ExportWorkoutHTTP", ExportWorkoutHTTP)
}

func initService(ctx context.Context) (*bootstrap.Service, error) {
	if svc != nil {
		return svc, nil
	}
	svcOnce.Do(func() {
		svc, svcErr = bootstrap.NewService(ctx)
		if svcErr != nil {
			slog.Error("Failed to initialize service", "error", svcErr)
		}
	})
	return svc, svcErr
}

// ExportWorkout is the entry point for Eventarc triggers
func ExportWorkout(ctx context.Context, e event.Event) error {
	svc, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("service init failed: %v", err)
	}
	return framework.WrapCloudEvent("exporter", svc, exportHandler)(ctx, e)
}

// ExportWorkoutHTTP accepts CloudEvents over HTTP or a raw Pub/Sub push body.
func ExportWorkoutHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	svc, err := initService(ctx)
	if err != nil {
		slog.Error("Service init failed", "error", err)
		http.Error(w, fmt.Sprintf("service init failed: %v", err), http.StatusInternalServerError)
		return
	}
	serveHTTP(w, r, svc)
}

func serveHTTP(w http.ResponseWriter, r *http.Request, svc *bootstrap.Service) {
	e, err := cehttp.NewEventFromHTTPRequest(r)
	if err != nil {
		e, err = eventFromPush(r)
		if err != nil {
			slog.Error("Failed to parse event from request", "error", err)
			http.Error(w, fmt.Sprintf("failed to parse event: %v", err), http.StatusBadRequest)
			return
		}
	}

	if err := framework.WrapCloudEvent("exporter", svc, exportHandler)(r.Context(), *e); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	framework.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// eventFromPush reads a Pub/Sub push body. message.data is either a
// CloudEvent or the bare completion payload.
func eventFromPush(r *http.Request) (*event.Event, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	defer r.Body.Close()

	var push types.PubSubMessage
	if err := json.Unmarshal(body, &push); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push message: %w", err)
	}
	if len(push.Message.Data) == 0 {
		return nil, fmt.Errorf("no data in push message")
	}

	var e event.Event
	if err := json.Unmarshal(push.Message.Data, &e); err == nil && e.Validate() == nil {
		return &e, nil
	}

	e = event.New()
	e.SetID(push.Message.Attributes["ce-id"])
	if e.ID() == "" {
		e.SetID("push")
	}
	e.SetSource("/fitai/pubsub")
	e.SetType(shared.EventTypeWorkoutCompleted)
	if err := e.SetData(event.ApplicationJSON, json.RawMessage(push.Message.Data)); err != nil {
		return nil, err
	}
	return &e, nil
}

// ExportResult is logged as the execution output.
type ExportResult struct {
	Status string `json:"status"`
	Object string `json:"object,omitempty"`
	Bytes  int    `json:"bytes,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// exportHandler writes a FIT file for the completed day of the user's
// stored plan. Rest days and unplanned days are skipped, not failed.
func exportHandler(ctx context.Context, e event.Event, fwCtx *framework.FrameworkContext) (interface{}, error) {
	if t := e.Type(); t != shared.EventTypeWorkoutCompleted {
		return ExportResult{Status: "skipped", Reason: "unexpected event type " + t}, nil
	}

	var evt types.WorkoutCompletedEvent
	if err := e.DataAs(&evt); err != nil {
		return nil, apperrors.ErrValidation.WithMessage("invalid workout completed event").WithCause(err)
	}
	if evt.UserID == "" {
		return nil, apperrors.ErrValidation.WithMessage("event has no user")
	}

	date, err := time.Parse(openapi_types.DateFormat, evt.Date)
	if err != nil {
		return nil, apperrors.ErrValidation.WithMessage("invalid event date").WithCause(err)
	}

	bucket := fwCtx.Service.Config.GCSArtifactBucket
	if bucket == "" {
		fwCtx.Logger.Warn("No artifact bucket configured, skipping export")
		return ExportResult{Status: "skipped", Reason: "no bucket"}, nil
	}

	stored, err := fwCtx.Service.DB.GetWorkoutPlan(ctx, evt.UserID)
	if err != nil {
		return nil, apperrors.WrapRetryable(err, apperrors.CodeStorageError, "failed to load workout plan")
	}
	if stored == nil {
		return ExportResult{Status: "skipped", Reason: "no plan"}, nil
	}

	weekday := evt.Weekday
	if weekday == "" {
		weekday = strings.ToLower(date.Weekday().String())
	}
	day := stored.WeeklyPlan.Day(weekday)
	if day == nil || len(day.Exercises) == 0 {
		return ExportResult{Status: "skipped", Reason: "rest day"}, nil
	}

	// The completion carries no time of day; place the workout at noon.
	start := date.Add(12 * time.Hour)
	data, err := file_generators.GenerateWorkoutFit(start, *day)
	if err != nil {
		return nil, fmt.Errorf("generate fit: %w", err)
	}

	object := ObjectName(evt.UserID, evt.Date)
	if err := fwCtx.Service.Store.Write(ctx, bucket, object, data); err != nil {
		return nil, err
	}
	fwCtx.Logger.Info("Exported workout", "user_id", evt.UserID, "object", object, "bytes", len(data))
	return ExportResult{Status: "exported", Object: object, Bytes: len(data)}, nil
}

// ObjectName is the artifact path for a user's workout on date.
func ObjectName(userID, date string) string {
	return path.Join("fit", userID, date+".fit")
}
