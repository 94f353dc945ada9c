package handlers

import (
	"errors"
	"net/http"

	"github.com/dom/socialnet/internal/api/render"
	"github.com/dom/socialnet/internal/pagination"
	"github.com/dom/socialnet/internal/service"
)

// writeError maps service and pagination errors onto HTTP responses.
func writeError(w http.ResponseWriter, op string, err error) {
	var verr *service.ValidationError
	var perr pagination.FieldErrors

	switch {
	case errors.As(err, &verr):
		render.FieldErrors(w, verr.Fields)
	case errors.As(err, &perr):
		render.FieldErrors(w, perr)
	case errors.Is(err, errInvalidBody):
		render.Detail(w, http.StatusBadRequest, "Malformed request body.")
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrPostNotFound):
		render.NotFound(w)
	case errors.Is(err, service.ErrAlreadyFollowing):
		render.Detail(w, http.StatusNotFound, "You already follow this user.")
	case errors.Is(err, service.ErrNotFollowing):
		render.Detail(w, http.StatusNotFound, "You don't follow this user.")
	case errors.Is(err, service.ErrNotPostAuthor):
		render.Detail(w, http.StatusForbidden, "This is not your post")
	default:
		render.InternalError(w, op, err)
	}
}
