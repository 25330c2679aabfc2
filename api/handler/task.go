package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktrack/api/transport"
	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/pkg/httpcontext"
	"github.com/fastygo/tasktrack/repository"
	"github.com/fastygo/tasktrack/usecase/lifecycle"
	taskUC "github.com/fastygo/tasktrack/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List project tasks
// @Tags tasks
// @Router /api/v1/projects/{projectId}/tasks [get]
func (h *TaskHandler) ListTasks(ctx *fasthttp.RequestCtx) {
	actorID := h.actorID(ctx)
	if actorID == "" {
		return
	}
	projectID := h.pathParam(ctx, "projectId")
	if projectID == "" {
		return
	}

	args := ctx.QueryArgs()
	filter := repository.TaskFilter{
		AssigneeID: string(args.Peek("assignee_id")),
		Name:       string(args.Peek("name")),
		Limit:      repository.PageLimit(parseInt(args.Peek("limit"), 50)),
		Offset:     parseInt(args.Peek("offset"), 0),
	}
	if raw := args.Peek("status"); len(raw) > 0 {
		if err := filter.Status.UnmarshalText(raw); err != nil {
			h.respondInvalid(ctx, err.Error())
			return
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, actorID, projectID, filter)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondPage(ctx, tasks, transport.NewPage(filter.Limit, filter.Offset, len(tasks)))
}

// @Summary Get task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	actorID := h.actorID(ctx)
	if actorID == "" {
		return
	}
	id := h.pathParam(ctx, "id")
	if id == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.GetTask(stdCtx, actorID, id)
	h.respondTask(stdCtx, ctx, http.StatusOK, task, err)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/projects/{projectId}/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	actorID := h.actorID(ctx)
	if actorID == "" {
		return
	}
	projectID := h.pathParam(ctx, "projectId")
	if projectID == "" {
		return
	}
	var req transport.TaskCreateRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.CreateTask(stdCtx, actorID, projectID, req.Task())
	h.respondTask(stdCtx, ctx, http.StatusCreated, task, err)
}

// @Summary Edit task
// @Tags tasks
// @Router /api/v1/tasks/{id} [patch]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	actorID := h.actorID(ctx)
	if actorID == "" {
		return
	}
	id := h.pathParam(ctx, "id")
	if id == "" {
		return
	}
	var req transport.TaskPatchRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.UpdateTask(stdCtx, actorID, id, lifecycle.TaskPatch{
		Name:           req.Name,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		StartDate:      req.StartDate,
		Deadline:       req.Deadline,
		EstimatedHours: req.EstimatedHours,
	})
	h.respondTask(stdCtx, ctx, http.StatusOK, task, err)
}

// @Summary Toggle task status
// @Tags tasks
// @Router /api/v1/tasks/{id}/status [put]
func (h *TaskHandler) ChangeStatus(ctx *fasthttp.RequestCtx) {
	actorID := h.actorID(ctx)
	if actorID == "" {
		return
	}
	id := h.pathParam(ctx, "id")
	if id == "" {
		return
	}
	var req transport.StatusRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.Status == "" {
		h.respondInvalid(ctx, "status is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.ChangeStatus(stdCtx, actorID, id, req.Status)
	h.respondTask(stdCtx, ctx, http.StatusOK, task, err)
}

// @Summary Reassign task
// @Tags tasks
// @Router /api/v1/tasks/{id}/assignee [put]
func (h *TaskHandler) AssignTask(ctx *fasthttp.RequestCtx) {
	actorID := h.actorID(ctx)
	if actorID == "" {
		return
	}
	id := h.pathParam(ctx, "id")
	if id == "" {
		return
	}
	var req transport.AssigneeRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.AssignTask(stdCtx, actorID, id, req.AssigneeID)
	h.respondTask(stdCtx, ctx, http.StatusOK, task, err)
}

// @Summary Log time
// @Tags tasks
// @Router /api/v1/tasks/{id}/time [post]
func (h *TaskHandler) LogTime(ctx *fasthttp.RequestCtx) {
	actorID := h.actorID(ctx)
	if actorID == "" {
		return
	}
	id := h.pathParam(ctx, "id")
	if id == "" {
		return
	}
	var req transport.TimeLogRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.LogTime(stdCtx, actorID, id, req.Minutes)
	h.respondTask(stdCtx, ctx, http.StatusOK, task, err)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	actorID := h.actorID(ctx)
	if actorID == "" {
		return
	}
	id := h.pathParam(ctx, "id")
	if id == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, actorID, id); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

func (h *TaskHandler) respondTask(stdCtx context.Context, ctx *fasthttp.RequestCtx, status int, task *domain.Task, err error) {
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, status, task)
}
