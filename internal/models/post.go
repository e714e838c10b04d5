package models

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Title        string     `gorm:"size:128;not null" json:"title"`
	Content      RichText   `gorm:"type:text" json:"content"`
	SubbreaditID string     `gorm:"size:36;not null;index" json:"subbreadit_id"`
	Subbreadit   Subbreadit `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"subbreadit"`
	AuthorID     string     `gorm:"size:36;not null;index" json:"author_id"`
	Author       User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Votes    []PostVote `gorm:"constraint:OnDelete:CASCADE;" json:"votes"`
	Comments []Comment  `gorm:"constraint:OnDelete:CASCADE;" json:"comments"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
