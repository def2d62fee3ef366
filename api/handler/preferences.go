package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/contentflow/api/transport"
	"github.com/fastygo/contentflow/pkg/httpcontext"
	prefsUC "github.com/fastygo/contentflow/usecase/preferences"
)

type PreferencesHandler struct {
	baseHandler
	uc *prefsUC.UseCase
}

func NewPreferencesHandler(uc *prefsUC.UseCase, adapter *httpcontext.Adapter, actors ActorLoader, logger *zap.Logger) *PreferencesHandler {
	return &PreferencesHandler{
		baseHandler: newBaseHandler(adapter, actors, logger),
		uc:          uc,
	}
}

// @Summary Theme of the signed-in user
// @Tags preferences
// @Router /api/v1/preferences/theme [get]
func (h *PreferencesHandler) GetTheme(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	theme, err := h.uc.Theme(stdCtx, actor)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.ThemeRequest{Theme: string(theme)})
}

// @Summary Save the theme of the signed-in user
// @Tags preferences
// @Router /api/v1/preferences/theme [put]
func (h *PreferencesHandler) SetTheme(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	var req transport.ThemeRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}
	theme, err := h.uc.SetTheme(stdCtx, actor, req.Theme)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.ThemeRequest{Theme: string(theme)})
}

// @Summary Switch between the light and dark theme
// @Tags preferences
// @Router /api/v1/preferences/theme/toggle [post]
func (h *PreferencesHandler) ToggleTheme(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	theme, err := h.uc.Toggle(stdCtx, actor)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.ThemeRequest{Theme: string(theme)})
}
