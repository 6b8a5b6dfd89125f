package nutrition

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
	functions.HTTP("AnalyzeFood", entry("analyze-food", analyzeFoodHandler))
	functions.HTTP("GenerateDiet", entry("generate-diet", generateDietHandler))
	functions.HTTP("GenerateMealPlan", entry("generate-meal-plan", mealPlanHandler))
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

func entry(name string, h framework.HTTPHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, err := initService(r.Context())
		if err != nil {
			framework.WriteError(w, apperrors.Wrap(err, apperrors.CodeInternalError, "service unavailable"), 0)
			return
		}
		framework.WrapHTTP(name, svc, framework.HTTPOptions{}, h).ServeHTTP(w, r)
	}
}

func analyzeFoodHandler(w http.ResponseWriter, r *http.Request, fwCtx *framework.FrameworkContext) (interface{}, error) {
	var req proxy.FoodRequest
	if err := framework.DecodeJSON(r, &req); err != nil {
		return nil, err
	}

	analysis, meta, err := fwCtx.Service.AI.AnalyzeFood(r.Context(), req)
	if err != nil {
		return nil, err
	}
	w.Header().Set(framework.SourceHeader, meta.Source)
	return analysis, nil
}

func generateDietHandler(w http.ResponseWriter, r *http.Request, fwCtx *framework.FrameworkContext) (interface{}, error) {
	var req proxy.DietRequest
	if err := framework.DecodeJSON(r, &req); err != nil {
		return nil, err
	}
	if err := framework.CheckQuota(r.Context(), fwCtx); err != nil {
		return nil, err
	}

	plan, meta, err := fwCtx.Service.AI.GenerateDiet(r.Context(), req)
	if err != nil {
		return nil, err
	}
	framework.RecordGeneration(r.Context(), fwCtx, meta.Source == proxy.SourceAI)
	w.Header().Set(framework.SourceHeader, meta.Source)
	return plan, nil
}

// MealPlanResponse is the body returned by GenerateMealPlan.
type MealPlanResponse struct {
	MealPlan types.MealPlan `json:"mealPlan"`
	Meta     proxy.Meta     `json:"meta"`
}

// mealPlanHandler always answers with a plan; AI failures surface in meta.
func mealPlanHandler(w http.ResponseWriter, r *http.Request, fwCtx *framework.FrameworkContext) (interface{}, error) {
	var req proxy.MealPlanRequest
	if r.ContentLength != 0 {
		if err := framework.DecodeJSON(r, &req); err != nil {
			return nil, err
		}
	}
	if err := framework.CheckQuota(r.Context(), fwCtx); err != nil {
		return nil, err
	}

	plan, meta, err := fwCtx.Service.AI.GenerateMealPlan(r.Context(), req)
	if err != nil {
		return nil, err
	}
	framework.RecordGeneration(r.Context(), fwCtx, meta.Source == proxy.SourceAI)
	w.Header().Set(framework.SourceHeader, meta.Source)
	return MealPlanResponse{MealPlan: plan, Meta: meta}, nil
}
