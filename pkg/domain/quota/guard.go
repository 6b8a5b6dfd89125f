package quota

import (
	"context"
	"time"

	apperrors "github.com/fitai/fitai-server/pkg/errors"
	"github.com/fitai/fitai-server/pkg/types"
)

// Store is the subset of the database the guard needs.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*types.UserProfile, error)
	IncrementGenerationCount(ctx context.Context, userID string) error
	ResetGenerationCount(ctx context.Context, userID string) error
}

// Check verifies that userID may run another generation, resetting a
// counter left over from a previous month. Users without a profile are
// treated as new free users.
func Check(ctx context.Context, store Store, userID string, now time.Time) error {
	profile, err := store.GetProfile(ctx, userID)
	if err != nil && apperrors.GetCode(err) != apperrors.CodeUserNotFound {
		return apperrors.Wrap(err, apperrors.CodeStorageError, "failed to load profile")
	}
	if profile == nil {
		profile = &types.UserProfile{UserID: userID}
	}

	if GetEffectiveTier(profile) == TierFree && ShouldResetCount(profile, now) {
		if err := store.ResetGenerationCount(ctx, userID); err != nil {
			return apperrors.Wrap(err, apperrors.CodeStorageError, "failed to reset generation count")
		}
	}

	if ok, reason := CanGenerate(profile, now); !ok {
		return apperrors.ErrQuotaExceeded.WithMessage(reason).WithMetadata("user_id", userID)
	}
	return nil
}

// Record counts one generation against userID.
func Record(ctx context.Context, store Store, userID string) error {
	if err := store.IncrementGenerationCount(ctx, userID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeStorageError, "failed to record generation")
	}
	return nil
}
