package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/contentflow/api/transport"
	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/pkg/httpcontext"
	appLogger "github.com/fastygo/contentflow/pkg/logger"
)

// ActorLoader resolves the authenticated user id into the acting user.
type ActorLoader interface {
	Actor(ctx context.Context, userID string) (domain.User, error)
}

type baseHandler struct {
	adapter *httpcontext.Adapter
	actors  ActorLoader
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, actors ActorLoader, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, actors: actors, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

// actor loads the user behind the verified X-User-ID header. It writes the
// error response itself and reports false when the request must stop.
func (h baseHandler) actor(ctx *fasthttp.RequestCtx, stdCtx context.Context) (domain.User, bool) {
	if h.actors == nil {
		h.respondError(ctx, stdCtx, domain.ErrUnauthorized)
		return domain.User{}, false
	}
	user, err := h.actors.Actor(stdCtx, httpcontext.UserID(stdCtx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return domain.User{}, false
	}
	return user, true
}

func (h baseHandler) decode(ctx *fasthttp.RequestCtx, stdCtx context.Context, v interface{}) bool {
	if err := transport.Decode(ctx.PostBody(), v); err != nil {
		h.respondError(ctx, stdCtx, err)
		return false
	}
	return true
}

func pathID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	return id
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, stdCtx context.Context, err error) {
	status, code := mapError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		appLogger.FromContext(stdCtx, h.logger).Error("request failed",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Error(err),
		)
		message = "internal error"
	}
	h.respondJSON(ctx, status, transport.NewError(code, message, nil))
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}
