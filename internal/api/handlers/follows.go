package handlers

import (
	"net/http"

	"github.com/dom/socialnet/internal/api/middleware"
	"github.com/dom/socialnet/internal/api/render"
	"github.com/dom/socialnet/internal/domain"
	"github.com/dom/socialnet/internal/pagination"
	"github.com/dom/socialnet/internal/service"
)

type listFunc func(r *http.Request, userID uint, req pagination.PageRequest) (pagination.Page[*domain.User], error)

type FollowHandler struct {
	followService *service.FollowService
}

func NewFollowHandler(followService *service.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetUser(r.Context())
	targetID, ok := uintParam(r, "id")
	if !ok {
		render.NotFound(w)
		return
	}

	if err := h.followService.Follow(r.Context(), caller, targetID); err != nil {
		writeError(w, "follows.Follow", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetUser(r.Context())
	targetID, ok := uintParam(r, "id")
	if !ok {
		render.NotFound(w)
		return
	}

	if err := h.followService.Unfollow(r.Context(), caller, targetID); err != nil {
		writeError(w, "follows.Unfollow", err)
		return
	}
	render.NoContent(w)
}

// IsFollowing answers 204 when the caller follows the target and 404 otherwise.
func (h *FollowHandler) IsFollowing(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetUser(r.Context())
	targetID, ok := uintParam(r, "id")
	if !ok {
		render.NotFound(w)
		return
	}

	following, err := h.followService.IsFollowing(r.Context(), caller, targetID)
	if err != nil {
		writeError(w, "follows.IsFollowing", err)
		return
	}
	if !following {
		render.NotFound(w)
		return
	}
	render.NoContent(w)
}

func (h *FollowHandler) MyFollowing(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetUser(r.Context())
	h.list(w, r, "follows.MyFollowing", caller.ID, h.following)
}

func (h *FollowHandler) MyFollowers(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetUser(r.Context())
	h.list(w, r, "follows.MyFollowers", caller.ID, h.followers)
}

func (h *FollowHandler) UserFollowing(w http.ResponseWriter, r *http.Request) {
	userID, ok := uintParam(r, "user")
	if !ok {
		render.NotFound(w)
		return
	}
	h.list(w, r, "follows.UserFollowing", userID, h.following)
}

func (h *FollowHandler) UserFollowers(w http.ResponseWriter, r *http.Request) {
	userID, ok := uintParam(r, "user")
	if !ok {
		render.NotFound(w)
		return
	}
	h.list(w, r, "follows.UserFollowers", userID, h.followers)
}

func (h *FollowHandler) following(r *http.Request, userID uint, req pagination.PageRequest) (pagination.Page[*domain.User], error) {
	return h.followService.ListFollowing(r.Context(), userID, req)
}

func (h *FollowHandler) followers(r *http.Request, userID uint, req pagination.PageRequest) (pagination.Page[*domain.User], error) {
	return h.followService.ListFollowers(r.Context(), userID, req)
}

func (h *FollowHandler) list(w http.ResponseWriter, r *http.Request, op string, userID uint, fetch listFunc) {
	req, err := pagination.ParseRequest(r)
	if err != nil {
		writeError(w, op, err)
		return
	}

	page, err := fetch(r, userID, req)
	if err != nil {
		writeError(w, op, err)
		return
	}
	render.JSON(w, http.StatusOK, pagination.Map(page, NewUserResponse))
}
