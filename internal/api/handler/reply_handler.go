package handler

import (
	"encoding/json"
	"net/http"

	"forum_board/internal/api/middleware"
	"forum_board/internal/app/service"
	"forum_board/internal/common"
	"forum_board/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ReplyHandler struct {
	replyService *service.ReplyService
	voteService  *service.VoteService
}

func NewReplyHandler(replyService *service.ReplyService, voteService *service.VoteService) *ReplyHandler {
	return &ReplyHandler{replyService: replyService, voteService: voteService}
}

func (h *ReplyHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Put("/{replyID}", h.edit)
	r.Delete("/{replyID}", h.delete)
	r.Post("/{replyID}/vote", h.vote)
}

func (h *ReplyHandler) create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}

	var req service.CreateReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	reply, err := h.replyService.Create(r.Context(), principal, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, reply)
}

func (h *ReplyHandler) edit(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	reply, err := h.replyService.Edit(r.Context(), principal, chi.URLParam(r, "replyID"), req.Content)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, reply)
}

func (h *ReplyHandler) delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}

	if err := h.replyService.Delete(r.Context(), principal, chi.URLParam(r, "replyID")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Reply deleted"})
}

func (h *ReplyHandler) vote(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}

	var req struct {
		Type model.VoteType `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.voteService.Vote(r.Context(), principal, chi.URLParam(r, "replyID"), req.Type)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: result})
}
