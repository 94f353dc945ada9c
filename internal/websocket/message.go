package websocket

import (
	"encoding/json"
	"time"

	"github.com/dom/socialnet/internal/domain"
)

type MessageType string

const (
	MessageTypePostCreated MessageType = "post.created"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

type PostAuthorPayload struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type PostCreatedPayload struct {
	ID        uint              `json:"id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"created_at"`
	Author    PostAuthorPayload `json:"author"`
}

func newPostCreatedPayload(post *domain.Post) PostCreatedPayload {
	payload := PostCreatedPayload{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
		Author:    PostAuthorPayload{ID: post.AuthorID},
	}
	if post.Author != nil {
		payload.Author.Username = post.Author.Username
	}
	return payload
}
