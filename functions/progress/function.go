package progress

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/fitai/fitai-server/pkg/bootstrap"
	"github.com/fitai/fitai-server/pkg/domain/progress"
	apperrors "github.com/fitai/fitai-server/pkg/errors"
	"github.com/fitai/fitai-server/pkg/framework"
)

var (
	svc     *bootstrap.Service
	svcOnce sync.Once
	svcErr  error
)

func init() {
	functions.HTTP("Progress", Progress)
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

var options = framework.HTTPOptions{
	Methods:     []string{http.MethodGet, http.MethodPost},
	RequireAuth: true,
}

// Progress reports the weekly summary on GET and records a day's
// completion on POST.
func Progress(w http.ResponseWriter, r *http.Request) {
	svc, err := initService(r.Context())
	if err != nil {
		framework.WriteError(w, apperrors.Wrap(err, apperrors.CodeInternalError, "service unavailable"), 0)
		return
	}
	framework.WrapHTTP("progress", svc, options, handler).ServeHTTP(w, r)
}

func handler(w http.ResponseWriter, r *http.Request, fwCtx *framework.FrameworkContext) (interface{}, error) {
	tracker := progress.NewTracker(fwCtx.Service.DB, fwCtx.Service.Pub, fwCtx.Logger)
	uid := fwCtx.UserID()

	if r.Method == http.MethodGet {
		return tracker.Summary(r.Context(), uid)
	}

	var req progress.CompletionRequest
	if err := framework.DecodeJSON(r, &req); err != nil {
		return nil, err
	}

	day, err := tracker.PlannedDay(r.Context(), uid, req.Date)
	if err != nil {
		fwCtx.Logger.Warn("Failed to load planned day", "error", err, "date", req.Date.String())
	}
	return tracker.RecordCompletion(r.Context(), uid, req.Date, req.Completed, day)
}
