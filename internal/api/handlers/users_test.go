package handlers_test

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/dom/socialnet/internal/api/handlers"
	"github.com/dom/socialnet/internal/pagination"
	"github.com/dom/socialnet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandler_Create(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		request        map[string]string
		setup          func()
		expectedStatus int
		expectedFields []string
	}{
		{
			name:           "successful registration",
			request:        map[string]string{"username": "newuser", "email": "new@example.com", "password": "password123"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing password",
			request:        map[string]string{"username": "x", "email": "x@example.com"},
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"password"},
		},
		{
			name:           "empty request body",
			request:        map[string]string{},
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"username", "email", "password"},
		},
		{
			name:    "duplicate username",
			request: map[string]string{"username": "existinguser", "email": "other@example.com", "password": "pw"},
			setup: func() {
				testutil.NewUserBuilder().WithUsername("existinguser").Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"username"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.DB.Truncate(t)
			if tt.setup != nil {
				tt.setup()
			}

			resp := testutil.DoJSON(t, http.MethodPost, ts.URL("/users/"), tt.request, "")
			defer resp.Body.Close()
			testutil.AssertStatusCode(t, resp, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var raw map[string]interface{}
				testutil.AssertJSONResponse(t, resp, &raw)
				assert.Equal(t, "newuser", raw["username"])
				assert.Contains(t, raw, "avatar_url")
				assert.Contains(t, raw, "member_since")
				assert.NotContains(t, raw, "password")
				assert.NotContains(t, raw, "email")
				return
			}

			var fields map[string][]string
			testutil.AssertJSONResponse(t, resp, &fields)
			for _, f := range tt.expectedFields {
				assert.Contains(t, fields, f)
			}
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.URL("/users/"), strings.NewReader("{not json"))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})
}

func TestUserHandler_ListAndGet(t *testing.T) {
	ts := testutil.NewTestServer(t)

	for i := 0; i < 12; i++ {
		testutil.NewUserBuilder().WithUsername(fmt.Sprintf("user%02d", i)).Build(t, ts.DB.DB)
	}

	t.Run("default page", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.URL("/users/"), nil, "")
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var page pagination.Page[handlers.UserResponse]
		testutil.AssertJSONResponse(t, resp, &page)
		assert.Equal(t, 10, page.Limit)
		assert.Equal(t, 0, page.Offset)
		require.Len(t, page.Data, 10)
		assert.Equal(t, "user00", page.Data[0].Username)
	})

	t.Run("literal window", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.URL("/users/?limit=5&offset=3"), nil, "")
		defer resp.Body.Close()

		var page pagination.Page[handlers.UserResponse]
		testutil.AssertJSONResponse(t, resp, &page)
		require.Len(t, page.Data, 2)
		assert.Equal(t, "user03", page.Data[0].Username)
	})

	t.Run("offset past limit is empty", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.URL("/users/?limit=2&offset=5"), nil, "")
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"limit":2,"offset":5,"data":[]}`, string(body))
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.URL("/users/?limit=abc&offset=-1"), nil, "")
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)

		var fields map[string][]string
		testutil.AssertJSONResponse(t, resp, &fields)
		assert.Equal(t, []string{"A valid integer is required."}, fields["limit"])
		assert.Equal(t, []string{"Ensure this value is greater than or equal to 0."}, fields["offset"])
	})

	t.Run("get by username", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.URL("/users/user07/"), nil, "")
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var user handlers.UserResponse
		testutil.AssertJSONResponse(t, resp, &user)
		assert.Equal(t, "user07", user.Username)
	})

	t.Run("unknown username", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.URL("/users/ghost/"), nil, "")
		defer resp.Body.Close()
		testutil.AssertDetail(t, resp, http.StatusNotFound, "Not found.")
	})
}

func TestUserHandler_Me(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.NewUserBuilder().WithUsername("other").Build(t, ts.DB.DB)
	user, token := testutil.NewUserBuilder().WithUsername("me").BuildAndLogin(t, ts)

	t.Run("anonymous", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.URL("/users/me/"), nil, "")
		defer resp.Body.Close()
		testutil.AssertDetail(t, resp, http.StatusForbidden, "Authentication credentials were not provided.")
	})

	t.Run("malformed authorization header", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.URL("/users/me/"), nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Token abc")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		testutil.AssertDetail(t, resp, http.StatusUnauthorized, "Invalid credentials")
	})

	t.Run("get", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.URL("/users/me/"), nil, token)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var me handlers.UserResponse
		testutil.AssertJSONResponse(t, resp, &me)
		assert.Equal(t, user.ID, me.ID)
		assert.Equal(t, "me", me.Username)
	})

	t.Run("partial update", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPut, ts.URL("/users/me/"), map[string]string{"about_me": "hello there"}, token)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var me handlers.UserResponse
		testutil.AssertJSONResponse(t, resp, &me)
		assert.Equal(t, "hello there", me.AboutMe)
		assert.Equal(t, "me", me.Username)
	})

	t.Run("taken username", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPut, ts.URL("/users/me/"), map[string]string{"username": "other"}, token)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})
}
