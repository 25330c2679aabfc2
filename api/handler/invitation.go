package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/tasktrack/api/transport"
	"github.com/fastygo/tasktrack/domain"
)

// @Summary Invite a user to a project
// @Tags invitations
// @Router /api/v1/projects/{projectId}/invitations [post]
func (h *MemberHandler) Invite(ctx *fasthttp.RequestCtx) {
	actorID := h.actorID(ctx)
	if actorID == "" {
		return
	}
	projectID := h.pathParam(ctx, "projectId")
	if projectID == "" {
		return
	}
	var req transport.InvitationRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.UserID == "" && req.Email == "" {
		h.respondInvalid(ctx, "user_id or email is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var inv *domain.Invitation
	var err error
	if req.UserID != "" {
		inv, err = h.uc.InviteMember(stdCtx, actorID, projectID, req.UserID, req.Role)
	} else {
		inv, err = h.uc.InviteByEmail(stdCtx, actorID, projectID, req.Email, req.Role)
	}
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, inv)
}

// @Summary Pending invitations addressed to the caller
// @Tags invitations
// @Router /api/v1/invitations [get]
func (h *MemberHandler) ListInvitations(ctx *fasthttp.RequestCtx) {
	actorID := h.actorID(ctx)
	if actorID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	invitations, err := h.uc.ListInvitations(stdCtx, actorID)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, invitations)
}

// @Summary Accept an invitation
// @Tags invitations
// @Router /api/v1/invitations/{id}/accept [post]
func (h *MemberHandler) AcceptInvitation(ctx *fasthttp.RequestCtx) {
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

	member, err := h.uc.AcceptInvitation(stdCtx, actorID, id)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, member)
}

// @Summary Reject an invitation
// @Tags invitations
// @Router /api/v1/invitations/{id}/reject [post]
func (h *MemberHandler) RejectInvitation(ctx *fasthttp.RequestCtx) {
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

	inv, err := h.uc.RejectInvitation(stdCtx, actorID, id)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, inv)
}
