package handlers

import (
	"net/http"

	"github.com/dom/socialnet/internal/api/middleware"
	"github.com/dom/socialnet/internal/api/render"
	"github.com/dom/socialnet/internal/pagination"
	"github.com/dom/socialnet/internal/service"
	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userService *service.UserService
	postService *service.PostService
}

func NewUserHandler(userService *service.UserService, postService *service.PostService) *UserHandler {
	return &UserHandler{
		userService: userService,
		postService: postService,
	}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	req, err := pagination.ParseRequest(r)
	if err != nil {
		writeError(w, "users.List", err)
		return
	}

	page, err := h.userService.List(r.Context(), req)
	if err != nil {
		writeError(w, "users.List", err)
		return
	}
	render.JSON(w, http.StatusOK, pagination.Map(page, NewUserResponse))
}

// Create registers a new account. Anyone may sign up.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, "users.Create", err)
		return
	}

	user, err := h.userService.Register(r.Context(), input)
	if err != nil {
		writeError(w, "users.Create", err)
		return
	}
	render.JSON(w, http.StatusCreated, NewUserResponse(user))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByUsername(r.Context(), chi.URLParam(r, "user"))
	if err != nil {
		writeError(w, "users.Get", err)
		return
	}
	render.JSON(w, http.StatusOK, NewUserResponse(user))
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	render.JSON(w, http.StatusOK, NewUserResponse(user))
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetUser(r.Context())

	var input service.UpdateProfileInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, "users.UpdateMe", err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), caller, input)
	if err != nil {
		writeError(w, "users.UpdateMe", err)
		return
	}
	render.JSON(w, http.StatusOK, NewUserResponse(user))
}

// Posts lists the posts written by the user named in the path.
func (h *UserHandler) Posts(w http.ResponseWriter, r *http.Request) {
	req, err := pagination.ParseRequest(r)
	if err != nil {
		writeError(w, "users.Posts", err)
		return
	}

	page, err := h.postService.ListByUsername(r.Context(), chi.URLParam(r, "user"), req)
	if err != nil {
		writeError(w, "users.Posts", err)
		return
	}
	render.JSON(w, http.StatusOK, pagination.Map(page, NewPostResponse))
}
