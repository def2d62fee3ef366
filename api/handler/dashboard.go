package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/contentflow/api/transport"
	"github.com/fastygo/contentflow/pkg/httpcontext"
	dashboardUC "github.com/fastygo/contentflow/usecase/dashboard"
)

type DashboardHandler struct {
	baseHandler
	uc *dashboardUC.UseCase
}

func NewDashboardHandler(uc *dashboardUC.UseCase, adapter *httpcontext.Adapter, actors ActorLoader, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		baseHandler: newBaseHandler(adapter, actors, logger),
		uc:          uc,
	}
}

type dashboardResponse struct {
	*dashboardUC.Report
	Agenda []transport.DayAgendaView `json:"agenda"`
}

// @Summary Role-scoped counters, alerts, client stats and agenda
// @Tags dashboard
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor, ok := h.actor(ctx, stdCtx)
	if !ok {
		return
	}
	report, err := h.uc.Report(stdCtx, actor)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, dashboardResponse{
		Report: report,
		Agenda: transport.NewAgendaView(report.Agenda),
	})
}
