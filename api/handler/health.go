package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktrack/api/transport"
	"github.com/fastygo/tasktrack/internal/infrastructure/monitor"
	"github.com/fastygo/tasktrack/pkg/httpcontext"
)

// HealthReporter is satisfied by *monitor.Monitor.
type HealthReporter interface {
	GetStatus() monitor.Status
	Healthy() bool
}

type HealthHandler struct {
	baseHandler
	monitor HealthReporter
}

func NewHealthHandler(mon HealthReporter, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"timestamp":      time.Now().UTC(),
		"last_check":     status.LastCheck,
		"probes":         status.Probes,
		"replay_enabled": status.OK(monitor.ProbeRecordStore),
		"pending_writes": status.PendingWrites,
	}
	if status.BufferCapacity > 0 {
		payload["buffer_capacity"] = status.BufferCapacity
	}

	if h.monitor.Healthy() {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.Degraded(payload))
}
