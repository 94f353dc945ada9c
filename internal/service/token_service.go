package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/dom/socialnet/internal/config"
	"github.com/dom/socialnet/internal/domain"
	"github.com/dom/socialnet/internal/metrics"
	"github.com/dom/socialnet/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	tokenBytes = 32

	// SweepGrace is how long a pair is kept after its refresh token expires.
	SweepGrace = 24 * time.Hour
)

// ClientInfo describes the caller a token pair was issued to.
type ClientInfo struct {
	UserAgent  string
	RemoteAddr string
}

func (c ClientInfo) jsonMap() datatypes.JSONMap {
	return datatypes.JSONMap{
		"user_agent":  c.UserAgent,
		"remote_addr": c.RemoteAddr,
	}
}

// TokenService issues, verifies, rotates and expires opaque access/refresh
// token pairs.
type TokenService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	cfg       *config.Config
}

func NewTokenService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, cfg *config.Config) *TokenService {
	return &TokenService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		cfg:       cfg,
	}
}

// Login checks Basic credentials. Unknown users and wrong passwords are not
// distinguished.
func (s *TokenService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Issue creates and stores a new pair for user, then sweeps long-expired
// pairs. Existing pairs of the user stay valid.
func (s *TokenService) Issue(ctx context.Context, user *domain.User, client ClientInfo) (*domain.TokenPair, error) {
	accessToken, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refreshToken, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := time.Now().UTC()
	pair := &domain.TokenPair{
		ID:                uuid.New(),
		AccessToken:       accessToken,
		AccessExpiration:  now.Add(s.cfg.AccessTokenTTL()),
		RefreshToken:      refreshToken,
		RefreshExpiration: now.Add(s.cfg.RefreshTokenTTL()),
		UserID:            user.ID,
		Client:            client.jsonMap(),
		CreatedAt:         now,
	}

	if err := s.tokenRepo.Create(ctx, pair); err != nil {
		return nil, fmt.Errorf("store token pair: %w", err)
	}
	pair.User = user
	metrics.TokensIssued.Inc()

	if _, err := s.Sweep(ctx); err != nil {
		log.Warn().Err(err).Str("op", "tokens.Issue").Msg("token sweep failed")
	}

	return pair, nil
}

// VerifyAccess returns the owner of a live access token, or nil when the
// token is unknown or expired.
func (s *TokenService) VerifyAccess(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	pair, err := s.tokenRepo.GetByAccessToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !pair.AccessValidAt(time.Now().UTC()) {
		return nil, nil
	}
	return pair.User, nil
}

// VerifyRefresh returns the pair holding a live refresh token, or nil.
func (s *TokenService) VerifyRefresh(ctx context.Context, token string) (*domain.TokenPair, error) {
	if token == "" {
		return nil, nil
	}
	pair, err := s.tokenRepo.GetByRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !pair.RefreshValidAt(time.Now().UTC()) {
		return nil, nil
	}
	return pair, nil
}

// Revoke expires both tokens of the pair immediately. The row is kept until
// a later sweep.
func (s *TokenService) Revoke(ctx context.Context, pair *domain.TokenPair) error {
	pair.Expire(time.Now().UTC())
	return s.tokenRepo.UpdateExpirations(ctx, pair)
}

// Sweep deletes pairs whose refresh token expired more than SweepGrace ago.
func (s *TokenService) Sweep(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-SweepGrace)
	n, err := s.tokenRepo.DeleteRefreshExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.TokensSwept.Add(float64(n))
		log.Debug().Int64("deleted", n).Msg("swept expired token pairs")
	}
	return n, nil
}

// Refresh rotates a pair: the presented refresh token is revoked and a new
// pair is issued to the same user.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*domain.TokenPair, error) {
	pair, err := s.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if pair == nil || pair.User == nil {
		return nil, ErrInvalidRefreshToken
	}

	if err := s.Revoke(ctx, pair); err != nil {
		return nil, fmt.Errorf("revoke old pair: %w", err)
	}
	return s.Issue(ctx, pair.User, client)
}

// RevokeByRefresh expires the pair holding refreshToken.
func (s *TokenService) RevokeByRefresh(ctx context.Context, refreshToken string) error {
	pair, err := s.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}
	if pair == nil {
		return ErrInvalidRefreshToken
	}
	return s.Revoke(ctx, pair)
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
