package profile

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/fitai/fitai-server/pkg/bootstrap"
	apperrors "github.com/fitai/fitai-server/pkg/errors"
	"github.com/fitai/fitai-server/pkg/framework"
	storage "github.com/fitai/fitai-server/pkg/storage/firestore"
	"github.com/fitai/fitai-server/pkg/types"
)

var (
	svc     *bootstrap.Service
	svcOnce sync.Once
	svcErr  error
)

func init() {
	functions.HTTP("Profile", Profile)
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
	Methods:     []string{http.MethodGet, http.MethodPut},
	RequireAuth: true,
}

var now = time.Now

func Profile(w http.ResponseWriter, r *http.Request) {
	svc, err := initService(r.Context())
	if err != nil {
		framework.WriteError(w, apperrors.Wrap(err, apperrors.CodeInternalError, "service unavailable"), 0)
		return
	}
	framework.WrapHTTP("profile", svc, options, handler).ServeHTTP(w, r)
}

func handler(w http.ResponseWriter, r *http.Request, fwCtx *framework.FrameworkContext) (interface{}, error) {
	ctx := r.Context()
	uid := fwCtx.UserID()

	current, err := fwCtx.Service.DB.GetProfile(ctx, uid)
	notFound := apperrors.GetCode(err) == apperrors.CodeUserNotFound
	if err != nil && !(notFound && r.Method == http.MethodPut) {
		return nil, err
	}
	if r.Method == http.MethodGet {
		return current, nil
	}

	var update types.UserProfile
	if err := framework.DecodeJSON(r, &update); err != nil {
		return nil, err
	}
	if update.Age < 0 || update.HeightCm < 0 || update.WeightKg < 0 || update.DaysPerWeek < 0 || update.DaysPerWeek > 7 {
		return nil, apperrors.ErrValidation.WithMessage("profile values out of range")
	}

	// Tier, admin and quota fields are server-owned.
	update.Tier, update.IsAdmin = "", false
	update.GenerationCount, update.GenerationsResetAt = 0, nil
	update.CreatedAt, update.UpdatedAt = nil, nil
	if notFound {
		t := now().UTC()
		update.CreatedAt = &t
	}

	if err := fwCtx.Service.DB.SaveProfile(ctx, uid, storage.ProfileToFirestore(&update)); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorageError, "failed to save profile")
	}
	fwCtx.Logger.Info("Saved profile", "created", notFound)

	return fwCtx.Service.DB.GetProfile(ctx, uid)
}
