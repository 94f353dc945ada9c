package postgres

import (
	"context"
	"time"

	"github.com/dom/socialnet/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *tokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, pair *domain.TokenPair) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(pair).Error
}

func (r *tokenRepository) GetByAccessToken(ctx context.Context, token string) (*domain.TokenPair, error) {
	return r.getBy(ctx, "access_token = ?", token)
}

func (r *tokenRepository) GetByRefreshToken(ctx context.Context, token string) (*domain.TokenPair, error) {
	return r.getBy(ctx, "refresh_token = ?", token)
}

func (r *tokenRepository) getBy(ctx context.Context, query string, token string) (*domain.TokenPair, error) {
	var pair domain.TokenPair
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&pair, query, token).Error
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

func (r *tokenRepository) UpdateExpirations(ctx context.Context, pair *domain.TokenPair) error {
	return r.db.WithContext(ctx).
		Model(&domain.TokenPair{}).
		Where("id = ?", pair.ID).
		Updates(map[string]interface{}{
			"access_expiration":  pair.AccessExpiration,
			"refresh_expiration": pair.RefreshExpiration,
		}).Error
}

func (r *tokenRepository) DeleteRefreshExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("refresh_expiration < ?", cutoff).
		Delete(&domain.TokenPair{})
	return result.RowsAffected, result.Error
}
