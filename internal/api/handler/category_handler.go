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

type CategoryHandler struct {
	categoryService *service.CategoryService
}

func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// RegisterReadRoutes are mounted behind optional auth: anonymous users see
// public categories only.
func (h *CategoryHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{categoryID}", h.get)
}

// RegisterAdminRoutes are mounted behind Authenticator + AdminOnly.
func (h *CategoryHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Put("/{categoryID}/name", h.rename)
	r.Put("/{categoryID}/lock", h.lockUnlock)
	r.Put("/{categoryID}/private", h.privatiseUnprivatise)
	r.Delete("/{categoryID}", h.delete)
	r.Post("/{categoryID}/access", h.grantAccess)
	r.Delete("/{categoryID}/access/{userID}", h.revokeAccess)
	r.Get("/{categoryID}/privileged", h.privilegedUsers)
}

func (h *CategoryHandler) list(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))
	filter := repository.CategoryFilter{
		Name:     query.Get("name"),
		SortBy:   query.Get("sort_by"),
		SortDesc: query.Get("sort") == "desc",
		Limit:    limit,
		Offset:   offset,
	}

	categories, err := h.categoryService.List(r.Context(), principal, filter)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) get(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())

	detail, err := h.categoryService.Get(r.Context(), principal, chi.URLParam(r, "categoryID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, detail)
}

func (h *CategoryHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	category, err := h.categoryService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) rename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	category, err := h.categoryService.Rename(r.Context(), chi.URLParam(r, "categoryID"), req.Name)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) lockUnlock(w http.ResponseWriter, r *http.Request) {
	result, err := h.categoryService.LockUnlock(r.Context(), chi.URLParam(r, "categoryID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: result})
}

func (h *CategoryHandler) privatiseUnprivatise(w http.ResponseWriter, r *http.Request) {
	result, err := h.categoryService.PrivatiseUnprivatise(r.Context(), chi.URLParam(r, "categoryID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: result})
}

func (h *CategoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	deleteTopics := r.URL.Query().Get("delete_topics") == "true"

	err := h.categoryService.Delete(r.Context(), chi.URLParam(r, "categoryID"), deleteTopics)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Category deleted"})
}

func (h *CategoryHandler) grantAccess(w http.ResponseWriter, r *http.Request) {
	var req service.GrantAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.categoryService.GrantAccess(r.Context(), chi.URLParam(r, "categoryID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: result})
}

func (h *CategoryHandler) revokeAccess(w http.ResponseWriter, r *http.Request) {
	err := h.categoryService.RevokeAccess(r.Context(), chi.URLParam(r, "categoryID"), chi.URLParam(r, "userID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Access revoked"})
}

func (h *CategoryHandler) privilegedUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.categoryService.PrivilegedUsers(r.Context(), chi.URLParam(r, "categoryID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}
