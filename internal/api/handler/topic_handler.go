package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"forum_board/internal/api/middleware"
	"forum_board/internal/app/service"
	"forum_board/internal/common"
	"forum_board/internal/domain/repository"

	"github.com/go-chi/chi/v5"
)

type TopicHandler struct {
	topicService *service.TopicService
}

func NewTopicHandler(topicService *service.TopicService) *TopicHandler {
	return &TopicHandler{topicService: topicService}
}

func (h *TopicHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{topicID}", h.get)
}

func (h *TopicHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Put("/{topicID}/title", h.rename)
	r.Put("/{topicID}/best-reply", h.chooseBestReply)
	r.Group(func(admin chi.Router) {
		admin.Use(middleware.AdminOnly)
		admin.Put("/{topicID}/lock", h.lockUnlock)
	})
}

func (h *TopicHandler) list(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))
	filter := repository.TopicFilter{
		Search:       query.Get("search"),
		Username:     query.Get("username"),
		CategoryName: query.Get("category"),
		SortBy:       query.Get("sort_by"),
		SortDesc:     query.Get("sort") == "desc",
		Limit:        limit,
		Offset:       offset,
	}
	switch query.Get("status") {
	case "open":
		open := false
		filter.Locked = &open
	case "locked":
		locked := true
		filter.Locked = &locked
	}

	topics, err := h.topicService.List(r.Context(), principal, filter)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, topics)
}

func (h *TopicHandler) get(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())

	topic, err := h.topicService.Get(r.Context(), principal, chi.URLParam(r, "topicID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, topic)
}

func (h *TopicHandler) create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}

	var req service.CreateTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	topic, err := h.topicService.Create(r.Context(), principal, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, topic)
}

func (h *TopicHandler) rename(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.topicService.Rename(r.Context(), principal, chi.URLParam(r, "topicID"), req.Title); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Title updated"})
}

func (h *TopicHandler) chooseBestReply(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}

	var req struct {
		ReplyID string `json:"reply_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.topicService.ChooseBestReply(r.Context(), principal, chi.URLParam(r, "topicID"), req.ReplyID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Best reply updated"})
}

func (h *TopicHandler) lockUnlock(w http.ResponseWriter, r *http.Request) {
	result, err := h.topicService.LockUnlock(r.Context(), chi.URLParam(r, "topicID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: result})
}
