package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/contentflow/api/transport"
	"github.com/fastygo/contentflow/pkg/httpcontext"
	commentUC "github.com/fastygo/contentflow/usecase/comment"
)

type CommentHandler struct {
	baseHandler
	uc *commentUC.UseCase
}

func NewCommentHandler(uc *commentUC.UseCase, adapter *httpcontext.Adapter, actors ActorLoader, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		baseHandler: newBaseHandler(adapter, actors, logger),
		uc:          uc,
	}
}

// @Summary Comments of a task, oldest first
// @Tags comments
// @Router /api/v1/tasks/{id}/comments [get]
func (h *CommentHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	comments, err := h.uc.List(stdCtx, actor, pathID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, comments)
}

// @Summary Comment on a task
// @Tags comments
// @Router /api/v1/tasks/{id}/comments [post]
func (h *CommentHandler) Create(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	var req transport.CommentRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	created, err := h.uc.Create(stdCtx, actor, pathID(ctx), req.Text)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Delete a comment
// @Tags comments
// @Router /api/v1/comments/{id} [delete]
func (h *CommentHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	if err := h.uc.Delete(stdCtx, actor, pathID(ctx)); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}
