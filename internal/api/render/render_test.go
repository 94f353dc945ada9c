package render_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dom/socialnet/internal/api/render"
	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "detail",
			write:      func(w http.ResponseWriter) { render.Detail(w, http.StatusForbidden, "nope") },
			wantStatus: http.StatusForbidden,
			wantBody:   `{"detail":"nope"}`,
		},
		{
			name:       "message",
			write:      func(w http.ResponseWriter) { render.Message(w, http.StatusUnauthorized, "Invalid refresh token") },
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"Invalid refresh token"}`,
		},
		{
			name:       "field errors",
			write:      func(w http.ResponseWriter) { render.FieldErrors(w, map[string][]string{"title": {"bad"}}) },
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"title":["bad"]}`,
		},
		{
			name:       "not found",
			write:      render.NotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"detail":"Not found."}`,
		},
		{
			name:       "internal error hides cause",
			write:      func(w http.ResponseWriter) { render.InternalError(w, "test", errors.New("db exploded")) },
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"detail":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}

	t.Run("no content", func(t *testing.T) {
		rec := httptest.NewRecorder()
		render.NoContent(rec)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}
