package services

import "breadit/internal/models"

// Tally is the displayed state of a target derived from its votes.
type Tally struct {
	Score      int              `json:"score"`
	ViewerVote *models.VoteType `json:"viewer_vote"`
}

// Aggregate derives the signed score and the viewer's own vote. It is the only
// source of displayed scores; nothing stores a counter.
func Aggregate[B models.Ballot](votes []B, viewerID string) Tally {
	var t Tally
	for _, v := range votes {
		dir := v.Direction()
		t.Score += dir.Delta()
		if viewerID != "" && v.Voter() == viewerID && t.ViewerVote == nil {
			t.ViewerVote = &dir
		}
	}
	return t
}
