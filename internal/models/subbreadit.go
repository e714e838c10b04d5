package models

import (
	"time"

	"gorm.io/gorm"
)

// Subbreadit is a community that posts belong to.
type Subbreadit struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:21;not null" json:"name"`
	CreatorID *string   `gorm:"size:36;index" json:"creator_id"`
	Creator   *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SubscriberCount int64 `gorm:"-" json:"subscriber_count"`
}

func (s *Subbreadit) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// Subscription grants UserID the right to post into SubbreaditID.
// The composite primary key makes the pair unique.
type Subscription struct {
	UserID       string     `gorm:"primaryKey;size:36" json:"user_id"`
	User         User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	SubbreaditID string     `gorm:"primaryKey;size:36;index" json:"subbreadit_id"`
	Subbreadit   Subbreadit `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}
