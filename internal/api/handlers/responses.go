package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dom/socialnet/internal/domain"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type UserResponse struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	AboutMe     string    `json:"about_me"`
	LastSeen    time.Time `json:"last_seen"`
	MemberSince time.Time `json:"member_since"`
	AvatarURL   string    `json:"avatar_url"`
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		AboutMe:     u.AboutMe,
		LastSeen:    u.LastSeen,
		MemberSince: u.MemberSince,
		AvatarURL:   u.AvatarURL(),
	}
}

type PostResponse struct {
	ID        uint          `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	Author    *UserResponse `json:"author"`
}

func NewPostResponse(p *domain.Post) PostResponse {
	resp := PostResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
	}
	if p.Author != nil {
		author := NewUserResponse(p.Author)
		resp.Author = &author
	}
	return resp
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

var errInvalidBody = errors.New("invalid request body")

// decodeJSON reads an optional JSON body into v. An empty body leaves v
// untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return errInvalidBody
	}
	return nil
}

// uintParam parses a numeric URL parameter. ok is false for anything that is
// not a positive integer.
func uintParam(r *http.Request, name string) (uint, bool) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}
