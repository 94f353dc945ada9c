package domain

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"
	"unicode/utf8"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email        string    `json:"-" gorm:"size:254;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	AboutMe      string    `json:"about_me" gorm:"size:128;not null;default:''"`
	LastSeen     time.Time `json:"last_seen" gorm:"not null"`
	MemberSince  time.Time `json:"member_since" gorm:"not null;<-:create"`
}

// AvatarURL is the gravatar address derived from the user's email.
func (u *User) AvatarURL() string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(u.Email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:])
}

// Follow is a directed edge: FollowerID receives updates from FolloweeID.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false"`
	FolloweeID uint      `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time `gorm:"not null"`

	Follower *User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Followee *User `gorm:"foreignKey:FolloweeID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

const AboutMeMaxLength = 128

// Validate checks the user-supplied profile fields
func (u *User) Validate() error {
	if utf8.RuneCountInString(u.AboutMe) > AboutMeMaxLength {
		return ErrAboutMeTooLong
	}
	return nil
}
