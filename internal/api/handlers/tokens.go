package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/dom/socialnet/internal/api/middleware"
	"github.com/dom/socialnet/internal/api/render"
	"github.com/dom/socialnet/internal/config"
	"github.com/dom/socialnet/internal/domain"
	"github.com/dom/socialnet/internal/service"
)

const refreshCookieName = "refresh_token"

type TokenHandler struct {
	tokenService *service.TokenService
	cfg          *config.Config
}

func NewTokenHandler(tokenService *service.TokenService, cfg *config.Config) *TokenHandler {
	return &TokenHandler{
		tokenService: tokenService,
		cfg:          cfg,
	}
}

// Create issues a pair to the Basic-authenticated caller.
func (h *TokenHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		render.Detail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	pair, err := h.tokenService.Issue(r.Context(), user, clientInfo(r))
	if err != nil {
		render.InternalError(w, "tokens.Create", err)
		return
	}
	h.writePair(w, pair)
}

// Refresh rotates the pair identified by the presented refresh token.
func (h *TokenHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := refreshTokenFrom(r)
	if refreshToken == "" {
		render.Message(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	pair, err := h.tokenService.Refresh(r.Context(), refreshToken, clientInfo(r))
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			render.Message(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		render.InternalError(w, "tokens.Refresh", err)
		return
	}
	h.writePair(w, pair)
}

// Revoke expires the pair identified by the presented refresh token.
func (h *TokenHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	refreshToken := refreshTokenFrom(r)
	if refreshToken == "" {
		render.Message(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	if err := h.tokenService.RevokeByRefresh(r.Context(), refreshToken); err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			render.Message(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		render.InternalError(w, "tokens.Revoke", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies(),
	})
	render.NoContent(w)
}

func (h *TokenHandler) writePair(w http.ResponseWriter, pair *domain.TokenPair) {
	resp := TokenResponse{AccessToken: pair.AccessToken}
	if h.cfg.RefreshTokenInBody {
		resp.RefreshToken = pair.RefreshToken
	}
	if h.cfg.RefreshTokenInCookie {
		http.SetCookie(w, &http.Cookie{
			Name:     refreshCookieName,
			Value:    pair.RefreshToken,
			Path:     "/",
			Expires:  pair.RefreshExpiration,
			HttpOnly: true,
			Secure:   h.cfg.SecureCookies(),
			SameSite: http.SameSiteLaxMode,
		})
	}
	render.JSON(w, http.StatusCreated, resp)
}

// refreshTokenFrom reads the refresh token from the cookie, falling back to a
// JSON or form-encoded body field.
func refreshTokenFrom(r *http.Request) string {
	if c, err := r.Cookie(refreshCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if r.Body == nil {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || len(body) == 0 {
		return ""
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return ""
		}
		return strings.TrimSpace(values.Get("refresh_token"))
	}

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return ""
	}
	return strings.TrimSpace(req.RefreshToken)
}

func clientInfo(r *http.Request) service.ClientInfo {
	return service.ClientInfo{
		UserAgent:  r.UserAgent(),
		RemoteAddr: r.RemoteAddr,
	}
}
