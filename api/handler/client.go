package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/contentflow/api/transport"
	"github.com/fastygo/contentflow/pkg/httpcontext"
	clientUC "github.com/fastygo/contentflow/usecase/client"
)

type ClientHandler struct {
	baseHandler
	uc *clientUC.UseCase
}

func NewClientHandler(uc *clientUC.UseCase, adapter *httpcontext.Adapter, actors ActorLoader, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		baseHandler: newBaseHandler(adapter, actors, logger),
		uc:          uc,
	}
}

// @Summary List clients, searched by name or sector with q
// @Tags clients
// @Router /api/v1/clients [get]
func (h *ClientHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	clients, err := h.uc.List(stdCtx, actor, string(ctx.QueryArgs().Peek("q")))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, clients)
}

// @Summary Get a client
// @Tags clients
// @Router /api/v1/clients/{id} [get]
func (h *ClientHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	client, err := h.uc.Get(stdCtx, actor, pathID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, client)
}

// @Summary Create a client with its targets
// @Tags clients
// @Router /api/v1/clients [post]
func (h *ClientHandler) Create(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	var req transport.ClientRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	created, err := h.uc.Create(stdCtx, actor, req.ToClient())
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update client fields; targets are replaced only when sent
// @Tags clients
// @Router /api/v1/clients/{id} [put]
func (h *ClientHandler) Update(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	var req transport.ClientRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	updated, err := h.uc.Update(stdCtx, actor, pathID(ctx), clientUC.Patch{
		Name:    req.Name,
		Sector:  req.Sector,
		Logo:    req.Logo,
		Active:  req.Active,
		Targets: req.TargetList(),
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Replace the targets of a client
// @Tags clients
// @Router /api/v1/clients/{id}/targets [put]
func (h *ClientHandler) SaveTargets(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	var req transport.TargetsRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	updated, err := h.uc.SaveTargets(stdCtx, actor, pathID(ctx), req.ToTargets())
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete a client without tasks
// @Tags clients
// @Router /api/v1/clients/{id} [delete]
func (h *ClientHandler) Delete(ctx *fasthttp.RequestCtx) {
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

// @Summary Target progress of a client
// @Tags clients
// @Router /api/v1/clients/{id}/progress [get]
func (h *ClientHandler) Progress(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	progress, err := h.uc.Progress(stdCtx, actor, pathID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, progress)
}
