package handler

import (
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/contentflow/api/transport"
	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/pkg/httpcontext"
	usersUC "github.com/fastygo/contentflow/usecase/users"
)

type UserHandler struct {
	baseHandler
	uc *usersUC.UseCase
}

func NewUserHandler(uc *usersUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		baseHandler: newBaseHandler(adapter, uc, logger),
		uc:          uc,
	}
}

func parseRole(value string) domain.Role {
	return domain.Role(strings.ToUpper(strings.TrimSpace(value)))
}

// @Summary Profile of the signed-in user
// @Tags profile
// @Router /api/v1/profile [get]
func (h *UserHandler) Profile(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	h.respondSuccess(ctx, http.StatusOK, actor)
}

// @Summary Update name and avatar of the signed-in user
// @Tags profile
// @Router /api/v1/profile [put]
func (h *UserHandler) UpdateProfile(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	var req transport.UserUpdateRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	updated, err := h.uc.Update(stdCtx, actor, actor.ID, usersUC.Patch{Name: req.Name, Avatar: req.Avatar})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary List users, optionally by role
// @Tags users
// @Router /api/v1/users [get]
func (h *UserHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}

	var (
		users []domain.User
		err   error
	)
	if parseRole(string(ctx.QueryArgs().Peek("role"))) == domain.RoleTeam {
		users, err = h.uc.Team(stdCtx, actor)
	} else {
		users, err = h.uc.List(stdCtx, actor)
	}
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, users)
}

// @Summary Get a user
// @Tags users
// @Router /api/v1/users/{id} [get]
func (h *UserHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	user, err := h.uc.Get(stdCtx, actor, pathID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}

// @Summary Create a user with a password
// @Tags users
// @Router /api/v1/users [post]
func (h *UserHandler) Create(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	var req transport.UserCreateRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	created, err := h.uc.Create(stdCtx, actor, usersUC.CreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Role:     parseRole(req.Role),
		Avatar:   req.Avatar,
		ClientID: req.ClientID,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update a user
// @Tags users
// @Router /api/v1/users/{id} [put]
func (h *UserHandler) Update(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	var req transport.UserUpdateRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	patch := usersUC.Patch{
		Name:     req.Name,
		Email:    req.Email,
		Avatar:   req.Avatar,
		ClientID: req.ClientID,
	}
	if req.Role != nil {
		role := parseRole(*req.Role)
		patch.Role = &role
	}

	updated, err := h.uc.Update(stdCtx, actor, pathID(ctx), patch)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete a user
// @Tags users
// @Router /api/v1/users/{id} [delete]
func (h *UserHandler) Delete(ctx *fasthttp.RequestCtx) {
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
