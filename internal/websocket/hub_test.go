package websocket_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dom/socialnet/internal/domain"
	"github.com/dom/socialnet/internal/websocket"
	gorillaWS "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFeedServer upgrades every request and registers it for the user id in
// the ?user= query parameter.
func newFeedServer(t *testing.T, hub *websocket.Hub) *httptest.Server {
	t.Helper()

	upgrader := gorillaWS.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseUint(r.URL.Query().Get("user"), 10, 64)
		if err != nil {
			http.Error(w, "bad user", http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := websocket.NewClient(hub, conn, uint(userID))
		hub.Register(client)
		go client.Serve()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, hub *websocket.Hub, userID uint) *gorillaWS.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user=" + strconv.FormatUint(uint64(userID), 10)
	before := hub.ConnectionCount(userID)
	conn, _, err := gorillaWS.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		return hub.ConnectionCount(userID) == before+1
	}, 2*time.Second, 10*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *gorillaWS.Conn) websocket.Message {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg websocket.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_PublishPost(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	srv := newFeedServer(t, hub)

	follower := dial(t, srv, hub, 1)
	secondTab := dial(t, srv, hub, 1)
	stranger := dial(t, srv, hub, 2)

	post := &domain.Post{
		ID:        10,
		Title:     "Hello",
		Content:   "World",
		CreatedAt: time.Now().UTC(),
		AuthorID:  3,
		Author:    &domain.User{ID: 3, Username: "author"},
	}
	hub.PublishPost(post, []uint{1})

	for _, conn := range []*gorillaWS.Conn{follower, secondTab} {
		msg := readMessage(t, conn)
		assert.Equal(t, websocket.MessageTypePostCreated, msg.Type)

		var payload websocket.PostCreatedPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, uint(10), payload.ID)
		assert.Equal(t, "Hello", payload.Title)
		assert.Equal(t, "author", payload.Author.Username)
	}

	stranger.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := stranger.ReadMessage()
	assert.Error(t, err, "non-recipients receive nothing")
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	srv := newFeedServer(t, hub)
	conn := dial(t, srv, hub, 5)

	conn.Close()
	assert.Eventually(t, func() bool {
		return hub.ConnectionCount(5) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_StopClosesConnections(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()

	srv := newFeedServer(t, hub)
	conn := dial(t, srv, hub, 7)

	hub.Stop()
	assert.Equal(t, 0, hub.ConnectionCount(7))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "connection is closed after stop")

	// publishing after stop must not block
	done := make(chan struct{})
	go func() {
		hub.PublishPost(&domain.Post{ID: 1}, []uint{7})
		hub.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish after stop blocked")
	}
}
