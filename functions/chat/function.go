package chat

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
)

var (
	svc     *bootstrap.Service
	svcOnce sync.Once
	svcErr  error
)

func init() {
	functions.HTTP("Chat", Chat)
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

// Chat is the entry point
func Chat(w http.ResponseWriter, r *http.Request) {
	svc, err := initService(r.Context())
	if err != nil {
		framework.WriteError(w, apperrors.Wrap(err, apperrors.CodeInternalError, "service unavailable"), 0)
		return
	}
	framework.WrapHTTP("chat", svc, framework.HTTPOptions{}, chatHandler).ServeHTTP(w, r)
}

// chatHandler answers with the AI reply, or a canned one when the AI is
// unavailable. Chat never fails for AI reasons.
func chatHandler(w http.ResponseWriter, r *http.Request, fwCtx *framework.FrameworkContext) (interface{}, error) {
	var req proxy.ChatRequest
	if err := framework.DecodeJSON(r, &req); err != nil {
		return nil, err
	}

	msg, meta, err := fwCtx.Service.AI.Chat(r.Context(), req)
	if err != nil {
		return nil, err
	}

	w.Header().Set(framework.SourceHeader, meta.Source)
	if meta.Error != "" {
		fwCtx.Logger.Warn("Answered from fallback", "reason", meta.Error)
	}
	return msg, nil
}
