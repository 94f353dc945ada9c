package handlers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dom/socialnet/internal/api/handlers"
	"github.com/dom/socialnet/internal/pagination"
	"github.com/dom/socialnet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostHandler_CRUD(t *testing.T) {
	ts := testutil.NewTestServer(t)
	author, token := testutil.NewUserBuilder().WithUsername("writer").BuildAndLogin(t, ts)
	_, intruderToken := testutil.NewUserBuilder().BuildAndLogin(t, ts)

	var created handlers.PostResponse

	t.Run("create", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPost, ts.URL("/posts/"), map[string]string{"title": "Hello", "content": "World"}, token)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusCreated)

		testutil.AssertJSONResponse(t, resp, &created)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "Hello", created.Title)
		require.NotNil(t, created.Author)
		assert.Equal(t, author.ID, created.Author.ID)
	})

	postURL := func() string { return ts.URL(fmt.Sprintf("/posts/%d/", created.ID)) }

	t.Run("anonymous read", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, postURL(), nil, "")
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var post handlers.PostResponse
		testutil.AssertJSONResponse(t, resp, &post)
		assert.Equal(t, "writer", post.Author.Username)
	})

	t.Run("non-author update", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPut, postURL(), map[string]string{"title": "mine now"}, intruderToken)
		defer resp.Body.Close()
		testutil.AssertDetail(t, resp, http.StatusForbidden, "This is not your post")
	})

	t.Run("non-author delete", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodDelete, postURL(), nil, intruderToken)
		defer resp.Body.Close()
		testutil.AssertDetail(t, resp, http.StatusForbidden, "This is not your post")
	})

	t.Run("author partial update", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPut, postURL(), map[string]string{"content": "Edited"}, token)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var post handlers.PostResponse
		testutil.AssertJSONResponse(t, resp, &post)
		assert.Equal(t, "Hello", post.Title)
		assert.Equal(t, "Edited", post.Content)
	})

	t.Run("author delete", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodDelete, postURL(), nil, token)
		resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusNoContent)

		resp = testutil.DoJSON(t, http.MethodGet, postURL(), nil, "")
		defer resp.Body.Close()
		testutil.AssertDetail(t, resp, http.StatusNotFound, "Not found.")
	})
}

func TestPostHandler_Validation(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndLogin(t, ts)

	tests := []struct {
		name           string
		token          string
		body           map[string]string
		expectedStatus int
	}{
		{name: "anonymous create", body: map[string]string{"title": "t", "content": "c"}, expectedStatus: http.StatusForbidden},
		{name: "missing title", token: token, body: map[string]string{"content": "c"}, expectedStatus: http.StatusBadRequest},
		{name: "title over 50 characters", token: token, body: map[string]string{"title": strings.Repeat("a", 51), "content": "c"}, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.DoJSON(t, http.MethodPost, ts.URL("/posts/"), tt.body, tt.token)
			defer resp.Body.Close()
			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
		})
	}
}

func TestPostHandler_Lists(t *testing.T) {
	ts := testutil.NewTestServer(t)

	alice, _ := testutil.NewUserBuilder().WithUsername("alice").Build(t, ts.DB.DB)
	bob, _ := testutil.NewUserBuilder().WithUsername("bob").Build(t, ts.DB.DB)

	base := time.Now().UTC().Add(-time.Hour)
	testutil.NewPostBuilder(alice).WithTitle("oldest").WithCreatedAt(base).Build(t, ts.DB.DB)
	testutil.NewPostBuilder(bob).WithTitle("middle").WithCreatedAt(base.Add(time.Minute)).Build(t, ts.DB.DB)
	testutil.NewPostBuilder(alice).WithTitle("newest").WithCreatedAt(base.Add(2 * time.Minute)).Build(t, ts.DB.DB)

	titles := func(t *testing.T, resp *http.Response) []string {
		t.Helper()
		var page pagination.Page[handlers.PostResponse]
		testutil.AssertJSONResponse(t, resp, &page)
		out := make([]string, 0, len(page.Data))
		for _, p := range page.Data {
			out = append(out, p.Title)
		}
		return out
	}

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		want           []string
	}{
		{name: "all posts newest first", path: "/posts/", expectedStatus: http.StatusOK, want: []string{"newest", "middle", "oldest"}},
		{name: "windowed", path: "/posts/?limit=2&offset=1", expectedStatus: http.StatusOK, want: []string{"middle"}},
		{name: "by user", path: "/users/alice/posts/", expectedStatus: http.StatusOK, want: []string{"newest", "oldest"}},
		{name: "unknown user", path: "/users/ghost/posts/", expectedStatus: http.StatusNotFound},
		{name: "bad offset", path: "/posts/?offset=x", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.DoJSON(t, http.MethodGet, ts.URL(tt.path), nil, "")
			defer resp.Body.Close()
			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			if tt.want != nil {
				assert.Equal(t, tt.want, titles(t, resp))
			}
		})
	}
}
