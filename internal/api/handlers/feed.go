package handlers

import (
	"net/http"

	"github.com/dom/socialnet/internal/api/middleware"
	"github.com/dom/socialnet/internal/api/render"
	"github.com/dom/socialnet/internal/service"
	"github.com/dom/socialnet/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type FeedHandler struct {
	hub          *websocket.Hub
	tokenService *service.TokenService
	userService  *service.UserService
}

func NewFeedHandler(hub *websocket.Hub, tokenService *service.TokenService, userService *service.UserService) *FeedHandler {
	return &FeedHandler{
		hub:          hub,
		tokenService: tokenService,
		userService:  userService,
	}
}

// Handle upgrades to the live feed. Browsers cannot set headers on a websocket
// handshake, so the access token may also arrive as ?token=.
func (h *FeedHandler) Handle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		token := r.URL.Query().Get("token")
		if token == "" {
			render.Detail(w, http.StatusForbidden, "Authentication credentials were not provided.")
			return
		}

		var err error
		user, err = h.tokenService.VerifyAccess(r.Context(), token)
		if err != nil {
			render.InternalError(w, "feed.Handle", err)
			return
		}
		if user == nil {
			render.Detail(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		if err := h.userService.Touch(r.Context(), user); err != nil {
			render.InternalError(w, "feed.Handle", err)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("feed upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn, user.ID)
	h.hub.Register(client)

	go client.Serve()
}
