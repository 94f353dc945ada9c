package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/socialnet/internal/domain"
	"github.com/dom/socialnet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedHandler(t *testing.T) {
	ts := testutil.NewTestServer(t)

	alice, aliceToken := testutil.NewUserBuilder().WithUsername("alice").BuildAndLogin(t, ts)
	bob, bobToken := testutil.NewUserBuilder().WithUsername("bob").BuildAndLogin(t, ts)
	carol, carolToken := testutil.NewUserBuilder().WithUsername("carol").BuildAndLogin(t, ts)

	resp := testutil.DoJSON(t, http.MethodPost, ts.URL(fmt.Sprintf("/me/following/%d/", alice.ID)), nil, bobToken)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	bobFeed := testutil.NewFeedClient(t, ts.FeedURL(bobToken))
	carolFeed := testutil.NewFeedClient(t, ts.FeedURL(carolToken))
	require.Eventually(t, func() bool {
		return ts.Hub.ConnectionCount(bob.ID) == 1 && ts.Hub.ConnectionCount(carol.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	resp = testutil.DoJSON(t, http.MethodPost, ts.URL("/posts/"), map[string]string{"title": "Live", "content": "from alice"}, aliceToken)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	payload := bobFeed.NextPost(2 * time.Second)
	assert.Equal(t, "Live", payload.Title)
	assert.Equal(t, "alice", payload.Author.Username)

	carolFeed.AssertQuiet(200 * time.Millisecond)
}

func TestFeedHandler_QueryTokenTouchesLastSeen(t *testing.T) {
	ts := testutil.NewTestServer(t)

	bob, bobToken := testutil.NewUserBuilder().WithUsername("bob").BuildAndLogin(t, ts)

	stale := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, ts.DB.DB.Model(&domain.User{}).Where("id = ?", bob.ID).UpdateColumn("last_seen", stale).Error)

	testutil.NewFeedClient(t, ts.FeedURL(bobToken))
	require.Eventually(t, func() bool {
		return ts.Hub.ConnectionCount(bob.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	var reloaded domain.User
	require.NoError(t, ts.DB.DB.First(&reloaded, bob.ID).Error)
	assert.True(t, reloaded.LastSeen.After(stale.Add(30*time.Minute)), "last_seen moved forward: %s", reloaded.LastSeen)
}

func TestFeedHandler_RequiresToken(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		token          string
		expectedStatus int
	}{
		{name: "no token", expectedStatus: http.StatusForbidden},
		{name: "bad token", token: "nope", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := ts.URL("/feed")
			if tt.token != "" {
				url += "?token=" + tt.token
			}
			resp, err := http.Get(url)
			require.NoError(t, err)
			defer resp.Body.Close()
			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
		})
	}
}
