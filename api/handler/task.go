package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/contentflow/api/transport"
	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/domain/workflow"
	"github.com/fastygo/contentflow/pkg/httpcontext"
	taskUC "github.com/fastygo/contentflow/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, actors ActorLoader, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, actors, logger),
		uc:          uc,
	}
}

func parsePriority(value string) domain.Priority {
	return domain.Priority(strings.ToUpper(strings.TrimSpace(value)))
}

// @Summary List visible tasks, filtered by client_id and searched with q
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	filter := workflow.Filter{
		ClientID: string(ctx.QueryArgs().Peek("client_id")),
		Search:   string(ctx.QueryArgs().Peek("q")),
	}

	tasks, err := h.uc.List(stdCtx, actor, filter)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewTaskViews(tasks))
}

// @Summary Search the visible tasks of one client by title or format
// @Tags tasks
// @Router /api/v1/clients/{id}/tasks [get]
func (h *TaskHandler) ClientTasks(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	tasks, err := h.uc.ClientTasks(stdCtx, actor, pathID(ctx), string(ctx.QueryArgs().Peek("q")))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewTaskViews(tasks))
}

// @Summary Get a task with the transitions the caller may apply
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	task, err := h.uc.Get(stdCtx, actor, pathID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, h.view(actor, task))
}

// @Summary Create a task; it always starts as PENDING
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) Create(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	var req transport.TaskCreateRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}
	input, err := req.ToTask()
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	created, err := h.uc.Create(stdCtx, actor, input)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, h.view(actor, created))
}

// @Summary Edit task fields
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) Update(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	var req transport.TaskUpdateRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}
	patch, err := toPatch(req)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	updated, err := h.uc.Update(stdCtx, actor, pathID(ctx), patch)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, h.view(actor, updated))
}

// @Summary Delete a task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) Delete(ctx *fasthttp.RequestCtx) {
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

// @Summary Move a task to another status
// @Tags tasks
// @Router /api/v1/tasks/{id}/transitions [post]
func (h *TaskHandler) Transition(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	var req transport.TransitionRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}
	status := domain.ContentStatus(strings.ToUpper(strings.TrimSpace(req.Status)))

	updated, err := h.uc.Transition(stdCtx, actor, pathID(ctx), status, req.Comment)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, h.view(actor, updated))
}

// @Summary Statuses the caller may move the task to
// @Tags tasks
// @Router /api/v1/tasks/{id}/transitions [get]
func (h *TaskHandler) Transitions(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	allowed, err := h.uc.AllowedTransitions(stdCtx, actor, pathID(ctx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if allowed == nil {
		allowed = []domain.ContentStatus{}
	}
	h.respondSuccess(ctx, http.StatusOK, allowed)
}

// @Summary Draft a briefing with the text generator
// @Tags tasks
// @Router /api/v1/briefings [post]
func (h *TaskHandler) Briefing(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	var req transport.BriefingRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	// generation runs past the request timeout of the adapter
	genCtx, genCancel := context.WithCancel(context.WithoutCancel(stdCtx))
	defer genCancel()
	text, err := h.uc.GenerateBriefing(genCtx, actor, req.Title, req.Format, req.Channel)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"briefing": text})
}

func (h *TaskHandler) view(actor domain.User, task *domain.Task) transport.TaskView {
	view := transport.NewTaskView(*task)
	view.AllowedTransitions = workflow.Allowed(*task, actor)
	return view
}

func toPatch(req transport.TaskUpdateRequest) (taskUC.Patch, error) {
	patch := taskUC.Patch{
		ClientID:    req.ClientID,
		Title:       req.Title,
		Briefing:    req.Briefing,
		Format:      req.Format,
		Channel:     req.Channel,
		AssignedTo:  req.AssignedTo,
		Attachments: req.Attachments,
		Links:       req.Links,
	}
	if req.Priority != nil {
		priority := parsePriority(*req.Priority)
		patch.Priority = &priority
	}
	if req.Deadline != nil {
		deadline, err := transport.ParseDeadline(*req.Deadline)
		if err != nil {
			return taskUC.Patch{}, err
		}
		patch.Deadline = &deadline
	}
	return patch, nil
}
