package testutil

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/socialnet/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username string
	email    string
	password string
	aboutMe  string
}

// NewUserBuilder creates a new UserBuilder with unique default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username: "user_" + suffix,
		email:    fmt.Sprintf("user_%s@example.com", suffix),
		password: "testpassword123",
	}
}

// WithUsername sets the username and derives a matching email
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	b.email = username + "@example.com"
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithAboutMe(aboutMe string) *UserBuilder {
	b.aboutMe = aboutMe
	return b
}

// Build creates the user in the database and returns it with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	// MinCost keeps the suites fast
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     b.username,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		AboutMe:      b.aboutMe,
		LastSeen:     now,
		MemberSince:  now,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// TokenResponse matches the token endpoint response
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// BuildAndLogin creates the user and logs in through POST /tokens, returning
// the user and its access token.
func (b *UserBuilder) BuildAndLogin(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)
	tokens := Login(t, ts, user.Username, password)
	return user, tokens.AccessToken
}

// Login obtains a token pair with Basic credentials.
func Login(t *testing.T, ts *TestServer, username, password string) TokenResponse {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, ts.URL("/tokens/"), nil)
	if err != nil {
		t.Fatalf("failed to build login request: %v", err)
	}
	req.SetBasicAuth(username, password)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	var tokens TokenResponse
	AssertJSONResponse(t, resp, &tokens)
	return tokens
}

// PostBuilder creates test posts with a builder pattern
type PostBuilder struct {
	author    *domain.User
	title     string
	content   string
	createdAt time.Time
}

func NewPostBuilder(author *domain.User) *PostBuilder {
	return &PostBuilder{
		author:    author,
		title:     "Test post",
		content:   "Test content",
		createdAt: time.Now().UTC(),
	}
}

func (b *PostBuilder) WithTitle(title string) *PostBuilder {
	b.title = title
	return b
}

func (b *PostBuilder) WithContent(content string) *PostBuilder {
	b.content = content
	return b
}

func (b *PostBuilder) WithCreatedAt(createdAt time.Time) *PostBuilder {
	b.createdAt = createdAt.UTC()
	return b
}

func (b *PostBuilder) Build(t *testing.T, db *gorm.DB) *domain.Post {
	t.Helper()

	post := &domain.Post{
		Title:     b.title,
		Content:   b.content,
		CreatedAt: b.createdAt,
		AuthorID:  b.author.ID,
	}
	if err := db.Omit("Author").Create(post).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}
	post.Author = b.author
	return post
}

// TokenPairBuilder creates token pairs with explicit expirations
type TokenPairBuilder struct {
	user              *domain.User
	accessToken       string
	refreshToken      string
	accessExpiration  time.Time
	refreshExpiration time.Time
}

func NewTokenPairBuilder(user *domain.User) *TokenPairBuilder {
	now := time.Now().UTC()
	return &TokenPairBuilder{
		user:              user,
		accessToken:       "access_" + uuid.NewString(),
		refreshToken:      "refresh_" + uuid.NewString(),
		accessExpiration:  now.Add(5 * time.Minute),
		refreshExpiration: now.Add(24 * time.Hour),
	}
}

func (b *TokenPairBuilder) WithAccessExpiration(at time.Time) *TokenPairBuilder {
	b.accessExpiration = at.UTC()
	return b
}

func (b *TokenPairBuilder) WithRefreshExpiration(at time.Time) *TokenPairBuilder {
	b.refreshExpiration = at.UTC()
	return b
}

func (b *TokenPairBuilder) Build(t *testing.T, db *gorm.DB) *domain.TokenPair {
	t.Helper()

	pair := &domain.TokenPair{
		ID:                uuid.New(),
		AccessToken:       b.accessToken,
		AccessExpiration:  b.accessExpiration,
		RefreshToken:      b.refreshToken,
		RefreshExpiration: b.refreshExpiration,
		UserID:            b.user.ID,
		CreatedAt:         time.Now().UTC(),
	}
	if err := db.Omit("User").Create(pair).Error; err != nil {
		t.Fatalf("failed to create token pair: %v", err)
	}
	return pair
}

// Follow inserts a follower -> followee edge directly.
func Follow(t *testing.T, db *gorm.DB, follower, followee *domain.User) {
	t.Helper()

	edge := &domain.Follow{
		FollowerID: follower.ID,
		FolloweeID: followee.ID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.Omit("Follower", "Followee").Create(edge).Error; err != nil {
		t.Fatalf("failed to create follow: %v", err)
	}
}
