package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/contentflow/api/transport"
	"github.com/fastygo/contentflow/pkg/httpcontext"
	authUC "github.com/fastygo/contentflow/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, actors ActorLoader, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, actors, logger),
		uc:          uc,
	}
}

// @Summary Register a team member account
// @Tags auth
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) SignUp(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.SignUpRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	user, err := h.uc.SignUp(stdCtx, req.Email, req.Password, req.Name)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, user)
}

// @Summary Sign in with email and password
// @Tags auth
// @Router /api/v1/auth/signin [post]
func (h *AuthHandler) SignIn(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.SignInRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	metadata := map[string]string{}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		metadata["user_agent"] = ua
	}
	if addr := ctx.RemoteIP(); addr != nil {
		metadata["remote_ip"] = addr.String()
	}

	result, err := h.uc.SignIn(stdCtx, req.Email, req.Password, metadata)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.SessionView(*result))
}

// @Summary Revoke the current session
// @Tags auth
// @Router /api/v1/auth/signout [post]
func (h *AuthHandler) SignOut(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.SignOut(stdCtx, httpcontext.SessionID(stdCtx)); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"signed_out": true})
}

// @Summary Current session and user
// @Tags auth
// @Router /api/v1/auth/session [get]
func (h *AuthHandler) Session(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.CurrentSession(stdCtx, httpcontext.SessionID(stdCtx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.SessionView(*result))
}

// @Summary Extend the current session and issue a fresh token
// @Tags auth
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Refresh(stdCtx, httpcontext.SessionID(stdCtx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.SessionView(*result))
}

// @Summary Change the password of the signed-in user
// @Tags auth
// @Router /api/v1/profile/password [put]
func (h *AuthHandler) ChangePassword(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.ChangePasswordRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	if err := h.uc.ChangePassword(stdCtx, httpcontext.UserID(stdCtx), req.Current, req.Next); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"changed": true})
}
