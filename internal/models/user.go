package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     *string   `gorm:"uniqueIndex;size:32" json:"username"` // nil until the user picks one
	Email        string    `gorm:"uniqueIndex;size:320;not null" json:"-"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Image        string    `gorm:"size:512" json:"image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// DisplayName falls back to a placeholder while the username is unset.
func (u User) DisplayName() string {
	if u.Username == nil || *u.Username == "" {
		return "anonymous"
	}
	return *u.Username
}
