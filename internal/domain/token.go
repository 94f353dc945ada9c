package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TokenPair is an access/refresh credential pair owned by a user. A user may
// hold any number of live pairs.
type TokenPair struct {
	ID                uuid.UUID         `gorm:"type:uuid;primaryKey"`
	AccessToken       string            `gorm:"size:64;not null;index"`
	AccessExpiration  time.Time         `gorm:"not null"`
	RefreshToken      string            `gorm:"size:64;not null;index"`
	RefreshExpiration time.Time         `gorm:"not null;index"`
	UserID            uint              `gorm:"not null;index"`
	Client            datatypes.JSONMap
	CreatedAt         time.Time

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (TokenPair) TableName() string {
	return "tokens"
}

// AccessValidAt reports whether the access token is still usable at t.
func (p *TokenPair) AccessValidAt(t time.Time) bool {
	return p.AccessExpiration.After(t)
}

// RefreshValidAt reports whether the refresh token is still usable at t.
func (p *TokenPair) RefreshValidAt(t time.Time) bool {
	return p.RefreshExpiration.After(t)
}

// Expire makes both halves of the pair unusable from t onward.
func (p *TokenPair) Expire(t time.Time) {
	p.AccessExpiration = t
	p.RefreshExpiration = t
}
