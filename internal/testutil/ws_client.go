package testutil

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dom/socialnet/internal/websocket"
	gorillaWS "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// FeedClient subscribes to the live feed and buffers every frame it receives.
type FeedClient struct {
	t      *testing.T
	conn   *gorillaWS.Conn
	frames chan feedFrame
	once   sync.Once
}

type feedFrame struct {
	msg *websocket.Message
	err error
}

// NewFeedClient dials url and closes the connection when the test ends.
func NewFeedClient(t *testing.T, url string) *FeedClient {
	t.Helper()

	dialer := gorillaWS.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, resp, err := dialer.Dial(url, nil)
	require.NoError(t, err, "dial feed")
	resp.Body.Close()

	fc := &FeedClient{t: t, conn: conn, frames: make(chan feedFrame, 64)}
	go fc.listen()
	t.Cleanup(fc.Close)
	return fc
}

// listen forwards frames until the connection fails. The final frame carries
// the read error.
func (fc *FeedClient) listen() {
	defer close(fc.frames)
	for {
		var msg websocket.Message
		if err := fc.conn.ReadJSON(&msg); err != nil {
			fc.frames <- feedFrame{err: err}
			return
		}
		fc.frames <- feedFrame{msg: &msg}
	}
}

func (fc *FeedClient) Close() {
	fc.once.Do(func() {
		closeMsg := gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, "")
		_ = fc.conn.WriteControl(gorillaWS.CloseMessage, closeMsg, time.Now().Add(time.Second))
		fc.conn.Close()
	})
}

// NextPost waits for the next post.created frame, skipping other types.
func (fc *FeedClient) NextPost(timeout time.Duration) websocket.PostCreatedPayload {
	fc.t.Helper()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case f, ok := <-fc.frames:
			require.True(fc.t, ok, "feed closed before a post arrived")
			require.NoError(fc.t, f.err, "feed read failed")
			if f.msg.Type != websocket.MessageTypePostCreated {
				continue
			}
			var payload websocket.PostCreatedPayload
			require.NoError(fc.t, json.Unmarshal(f.msg.Payload, &payload))
			return payload
		case <-deadline.C:
			require.FailNow(fc.t, "no post received", "waited %s", timeout)
		}
	}
}

// AssertQuiet fails if any message arrives within wait.
func (fc *FeedClient) AssertQuiet(wait time.Duration) {
	fc.t.Helper()

	select {
	case f := <-fc.frames:
		if f.msg != nil {
			require.FailNow(fc.t, "unexpected feed message", "type %s", f.msg.Type)
		}
	case <-time.After(wait):
	}
}
