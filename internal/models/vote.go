package models

import (
	"time"
)

type VoteType string

const (
	VoteUp   VoteType = "UP"
	VoteDown VoteType = "DOWN"
)

func (t VoteType) Valid() bool {
	return t == VoteUp || t == VoteDown
}

// Delta is the signed contribution of the vote to a score.
func (t VoteType) Delta() int {
	switch t {
	case VoteUp:
		return 1
	case VoteDown:
		return -1
	}
	return 0
}

// Ballot is the read-only view of a vote shared by post and comment votes.
type Ballot interface {
	Voter() string
	Direction() VoteType
}

// PostVote is keyed by (user, post): a user holds at most one vote per post.
type PostVote struct {
	UserID    string    `gorm:"primaryKey;size:36" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PostID    string    `gorm:"primaryKey;size:36;index" json:"post_id"`
	Type      VoteType  `gorm:"size:4;not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v PostVote) Voter() string       { return v.UserID }
func (v PostVote) Direction() VoteType { return v.Type }

// CommentVote is keyed by (user, comment).
type CommentVote struct {
	UserID    string    `gorm:"primaryKey;size:36" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CommentID string    `gorm:"primaryKey;size:36;index" json:"comment_id"`
	Type      VoteType  `gorm:"size:4;not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v CommentVote) Voter() string       { return v.UserID }
func (v CommentVote) Direction() VoteType { return v.Type }
