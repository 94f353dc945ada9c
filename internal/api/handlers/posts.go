package handlers

import (
	"net/http"

	"github.com/dom/socialnet/internal/api/middleware"
	"github.com/dom/socialnet/internal/api/render"
	"github.com/dom/socialnet/internal/pagination"
	"github.com/dom/socialnet/internal/service"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	req, err := pagination.ParseRequest(r)
	if err != nil {
		writeError(w, "posts.List", err)
		return
	}

	page, err := h.postService.List(r.Context(), req)
	if err != nil {
		writeError(w, "posts.List", err)
		return
	}
	render.JSON(w, http.StatusOK, pagination.Map(page, NewPostResponse))
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	author, _ := middleware.GetUser(r.Context())

	var input service.CreatePostInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, "posts.Create", err)
		return
	}

	post, err := h.postService.Create(r.Context(), author, input)
	if err != nil {
		writeError(w, "posts.Create", err)
		return
	}
	render.JSON(w, http.StatusCreated, NewPostResponse(post))
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		render.NotFound(w)
		return
	}

	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		writeError(w, "posts.Get", err)
		return
	}
	render.JSON(w, http.StatusOK, NewPostResponse(post))
}

// Update applies a partial edit. Only the author may edit a post.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetUser(r.Context())
	id, ok := uintParam(r, "id")
	if !ok {
		render.NotFound(w)
		return
	}

	var input service.UpdatePostInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, "posts.Update", err)
		return
	}

	post, err := h.postService.Update(r.Context(), caller, id, input)
	if err != nil {
		writeError(w, "posts.Update", err)
		return
	}
	render.JSON(w, http.StatusOK, NewPostResponse(post))
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetUser(r.Context())
	id, ok := uintParam(r, "id")
	if !ok {
		render.NotFound(w)
		return
	}

	if err := h.postService.Delete(r.Context(), caller, id); err != nil {
		writeError(w, "posts.Delete", err)
		return
	}
	render.NoContent(w)
}
