package workout

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/fitai/fitai-server/pkg/bootstrap"
	apperrors "github.com/fitai/fitai-server/pkg/errors"
	"github.com/fitai/fitai-server/pkg/framework"
	"github.com/fitai/fitai-server/pkg/proxy"
	"github.com/fitai/fitai-server/pkg/types"
)

var (
	svc     *bootstrap.Service
	svcOnce sync.Once
	svcErr  error
)

func init() {
	functions.HTTP("GenerateWorkout", entry("generate-workout", framework.HTTPOptions{}, generateWorkoutHandler))
	functions.HTTP("GenerateWeeklyPlan", entry("generate-weekly-plan", framework.HTTPOptions{RequireAuth: true}, weeklyPlanHandler))
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

func entry(name string, opts framework.HTTPOptions, h framework.HTTPHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, err := initService(r.Context())
		if err != nil {
			framework.WriteError(w, apperrors.Wrap(err, apperrors.CodeInternalError, "service unavailable"), 0)
			return
		}
		framework.WrapHTTP(name, svc, opts, h).ServeHTTP(w, r)
	}
}

func generateWorkoutHandler(w http.ResponseWriter, r *http.Request, fwCtx *framework.FrameworkContext) (interface{}, error) {
	var req proxy.WorkoutRequest
	if err := framework.DecodeJSON(r, &req); err != nil {
		return nil, err
	}
	if err := framework.CheckQuota(r.Context(), fwCtx); err != nil {
		return nil, err
	}

	plan, meta, err := fwCtx.Service.AI.GenerateWorkout(r.Context(), req)
	if err != nil {
		return nil, err
	}
	framework.RecordGeneration(r.Context(), fwCtx, meta.Source == proxy.SourceAI)
	w.Header().Set(framework.SourceHeader, meta.Source)
	return plan, nil
}

// WeeklyPlanResponse is the body returned by GenerateWeeklyPlan.
type WeeklyPlanResponse struct {
	WeeklyPlan types.WeeklyWorkoutPlan `json:"weeklyPlan"`
	Meta       proxy.Meta              `json:"meta"`
}

// weeklyPlanHandler personalizes the weekly template from the caller's
// profile and stores the result as their current plan.
func weeklyPlanHandler(w http.ResponseWriter, r *http.Request, fwCtx *framework.FrameworkContext) (interface{}, error) {
	ctx := r.Context()
	uid := fwCtx.UserID()

	profile, err := fwCtx.Service.DB.GetProfile(ctx, uid)
	if err != nil && apperrors.GetCode(err) != apperrors.CodeUserNotFound {
		return nil, apperrors.Wrap(err, apperrors.CodeStorageError, "failed to load profile")
	}
	if err := framework.CheckQuota(ctx, fwCtx); err != nil {
		return nil, err
	}

	plan, meta, err := fwCtx.Service.AI.GenerateWeeklyPlan(ctx, proxy.WeeklyPlanRequestFromProfile(profile))
	if err != nil {
		return nil, err
	}
	framework.RecordGeneration(ctx, fwCtx, meta.Source == proxy.SourceAI)

	if err := fwCtx.Service.DB.SaveWorkoutPlan(ctx, uid, plan); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorageError, "failed to save workout plan")
	}
	fwCtx.Logger.Info("Saved weekly plan", "source", meta.Source, "strategy", meta.Strategy, "confidence", meta.Confidence)

	w.Header().Set(framework.SourceHeader, meta.Source)
	return WeeklyPlanResponse{WeeklyPlan: plan, Meta: meta}, nil
}
