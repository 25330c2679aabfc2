package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktrack/api/transport"
	"github.com/fastygo/tasktrack/pkg/httpcontext"
	memberUC "github.com/fastygo/tasktrack/usecase/member"
)

type MemberHandler struct {
	baseHandler
	uc *memberUC.UseCase
}

func NewMemberHandler(uc *memberUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *MemberHandler {
	return &MemberHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List project members
// @Tags members
// @Router /api/v1/projects/{projectId}/members [get]
func (h *MemberHandler) ListMembers(ctx *fasthttp.RequestCtx) {
	actorID := h.actorID(ctx)
	if actorID == "" {
		return
	}
	projectID := h.pathParam(ctx, "projectId")
	if projectID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	members, err := h.uc.ListMembers(stdCtx, actorID, projectID)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, members)
}

// @Summary Add member
// @Tags members
// @Router /api/v1/projects/{projectId}/members [post]
func (h *MemberHandler) AddMember(ctx *fasthttp.RequestCtx) {
	actorID := h.actorID(ctx)
	if actorID == "" {
		return
	}
	projectID := h.pathParam(ctx, "projectId")
	if projectID == "" {
		return
	}
	var req transport.MemberAddRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	member, err := h.uc.AddMember(stdCtx, actorID, projectID, req.Member())
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, member)
}

// @Summary Change member role
// @Tags members
// @Router /api/v1/members/{id}/role [put]
func (h *MemberHandler) ChangeRole(ctx *fasthttp.RequestCtx) {
	actorID := h.actorID(ctx)
	if actorID == "" {
		return
	}
	id := h.pathParam(ctx, "id")
	if id == "" {
		return
	}
	var req transport.RoleChangeRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.Role == "" {
		h.respondInvalid(ctx, "role is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	member, err := h.uc.ChangeRole(stdCtx, actorID, id, req.Role)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, member)
}

// @Summary Remove member
// @Tags members
// @Router /api/v1/members/{id} [delete]
func (h *MemberHandler) RemoveMember(ctx *fasthttp.RequestCtx) {
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

	if err := h.uc.RemoveMember(stdCtx, actorID, id); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Actor capabilities in a project
// @Tags members
// @Router /api/v1/projects/{projectId}/permissions [get]
func (h *MemberHandler) Permissions(ctx *fasthttp.RequestCtx) {
	actorID := h.actorID(ctx)
	if actorID == "" {
		return
	}
	projectID := h.pathParam(ctx, "projectId")
	if projectID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	role, perms, err := h.uc.Permissions(stdCtx, actorID, projectID)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.PermissionsResponse{
		ProjectID:    projectID,
		Role:         role,
		Capabilities: perms.Map(),
	})
}
