package models

import (
	"time"

	"gorm.io/gorm"
)

type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	PostID    string    `gorm:"size:36;not null;index" json:"post_id"`
	AuthorID  string    `gorm:"size:36;not null;index" json:"author_id"`
	Author    User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	ReplyToID *string   `gorm:"size:36;index" json:"reply_to_id"` // nil for top-level comments
	ReplyTo   *Comment  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	Votes []CommentVote `gorm:"constraint:OnDelete:CASCADE;" json:"votes"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// IsTopLevel reports whether the comment starts a thread.
func (c Comment) IsTopLevel() bool {
	return c.ReplyToID == nil
}
