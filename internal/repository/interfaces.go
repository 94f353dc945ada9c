package repository

import (
	"context"
	"time"

	"github.com/dom/socialnet/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	TouchLastSeen(ctx context.Context, id uint, at time.Time) error
	UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error)
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)
}

// FollowRepository stores the directed follow edges. "Followees" of a user are
// the accounts it follows; "followers" are the accounts following it.
type FollowRepository interface {
	Create(ctx context.Context, followerID, followeeID uint) error
	Delete(ctx context.Context, followerID, followeeID uint) (bool, error)
	Exists(ctx context.Context, followerID, followeeID uint) (bool, error)
	ListFollowees(ctx context.Context, followerID uint, offset, limit int) ([]*domain.User, error)
	ListFollowers(ctx context.Context, followeeID uint, offset, limit int) ([]*domain.User, error)
	FollowerIDs(ctx context.Context, followeeID uint) ([]uint, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uint) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*domain.Post, error)
	ListByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]*domain.Post, error)
}

type TokenRepository interface {
	Create(ctx context.Context, pair *domain.TokenPair) error
	GetByAccessToken(ctx context.Context, token string) (*domain.TokenPair, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.TokenPair, error)
	UpdateExpirations(ctx context.Context, pair *domain.TokenPair) error
	DeleteRefreshExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Repositories struct {
	User   UserRepository
	Follow FollowRepository
	Post   PostRepository
	Token  TokenRepository
}
