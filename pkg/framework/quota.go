package framework

import (
	"context"
	"time"

	"github.com/fitai/fitai-server/pkg/domain/quota"
)

// CheckQuota enforces the caller's monthly generation limit. Anonymous
// requests are not metered.
func CheckQuota(ctx context.Context, fwCtx *FrameworkContext) error {
	if fwCtx.Session == nil {
		return nil
	}
	return quota.Check(ctx, fwCtx.Service.DB, fwCtx.Session.UID, time.Now())
}

// RecordGeneration counts a generation the AI actually answered. Failures
// are logged; the response has already been produced.
func RecordGeneration(ctx context.Context, fwCtx *FrameworkContext, fromAI bool) {
	if fwCtx.Session == nil || !fromAI {
		return
	}
	if err := quota.Record(ctx, fwCtx.Service.DB, fwCtx.Session.UID); err != nil {
		fwCtx.Logger.Warn("Failed to record generation", "error", err)
	}
}
