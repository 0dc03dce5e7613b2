package model

import (
	"time"
)

// ResetToken is the persisted half of a password reset token. Only the SHA-256
// of the cleartext is stored; a user has at most one row.
type ResetToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                  // reset token ID
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`   // owning user
	Token     string    `gorm:"size:64;not null;uniqueIndex" json:"-"` // sha256 hex of the cleartext
	CreatedAt time.Time `gorm:"not null" json:"created_at"`            // created at
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`      // absolute expiry

	User User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID" json:"-"`
}

func (ResetToken) TableName() string {
	return "reset_tokens"
}

// IsExpired reports whether the token is unusable at now.
func (r *ResetToken) IsExpired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
