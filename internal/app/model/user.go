package model

import (
	"time"
)

const (
	DefaultPhoto = "https://i.ibb.co/4pDNDk1/avatar.png"
	DefaultPhone = "000"
	DefaultBio   = "New user"
)

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`              // user ID
	Name         string    `gorm:"not null" json:"name"`              // display name
	Email        string    `gorm:"uniqueIndex;not null" json:"email"` // stored lower-cased
	PasswordHash string    `gorm:"not null" json:"-"`                 // bcrypt hash, never plaintext
	Photo        string    `gorm:"not null" json:"photo"`             // avatar URL
	Phone        string    `json:"phone"`                             // phone number
	Bio          string    `gorm:"size:250" json:"bio"`               // short bio
	CreatedAt    time.Time `json:"created_at"`                        // created at
	UpdatedAt    time.Time `json:"updated_at"`                        // updated at

	Products []Product `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// ApplyDefaults fills empty profile fields with their defaults.
func (u *User) ApplyDefaults() {
	if u.Photo == "" {
		u.Photo = DefaultPhoto
	}
	if u.Phone == "" {
		u.Phone = DefaultPhone
	}
	if u.Bio == "" {
		u.Bio = DefaultBio
	}
}
