package services

import (
	"context"
	"errors"
	"fmt"

	"breadit/internal/metrics"
	"breadit/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// VoteOutcome tells the caller which of the three transitions was taken.
type VoteOutcome string

const (
	VoteCreated VoteOutcome = "created"
	VoteUpdated VoteOutcome = "updated"
	VoteRemoved VoteOutcome = "removed"
)

type VoteRequest struct {
	Kind     TargetKind      `validate:"oneof=post comment"`
	TargetID string          `validate:"required,id"`
	Type     models.VoteType `validate:"required,votetype"`
}

// VoteResult is the definitive post-write state of the target for the viewer.
type VoteResult struct {
	Outcome VoteOutcome `json:"outcome"`
	Tally
}

// decideVote is the vote state machine: no vote creates, the same direction
// toggles off and the opposite direction flips.
func decideVote(current *models.VoteType, requested models.VoteType) VoteOutcome {
	switch {
	case current == nil:
		return VoteCreated
	case *current == requested:
		return VoteRemoved
	default:
		return VoteUpdated
	}
}

// voteTable describes where votes for one target kind live.
type voteTable struct {
	kind   TargetKind
	column string
	target func() any
	row    func(userID, targetID string, t models.VoteType) any
	tally  func(tx *gorm.DB, targetID, viewerID string) (Tally, error)
}

var voteTables = map[TargetKind]voteTable{
	TargetPost: {
		kind:   TargetPost,
		column: "post_id",
		target: func() any { return &models.Post{} },
		row: func(userID, targetID string, t models.VoteType) any {
			return &models.PostVote{UserID: userID, PostID: targetID, Type: t}
		},
		tally: func(tx *gorm.DB, targetID, viewerID string) (Tally, error) {
			return tallyOf[models.PostVote](tx, "post_id", targetID, viewerID)
		},
	},
	TargetComment: {
		kind:   TargetComment,
		column: "comment_id",
		target: func() any { return &models.Comment{} },
		row: func(userID, targetID string, t models.VoteType) any {
			return &models.CommentVote{UserID: userID, CommentID: targetID, Type: t}
		},
		tally: func(tx *gorm.DB, targetID, viewerID string) (Tally, error) {
			return tallyOf[models.CommentVote](tx, "comment_id", targetID, viewerID)
		},
	},
}

func tallyOf[B models.Ballot](tx *gorm.DB, column, targetID, viewerID string) (Tally, error) {
	var votes []B
	if err := tx.Where(column+" = ?", targetID).Find(&votes).Error; err != nil {
		return Tally{}, err
	}
	return Aggregate(votes, viewerID), nil
}

type VoteServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
	Metrics  *metrics.Collector
}

// VoteService applies votes on posts and comments.
type VoteService struct {
	db      *gorm.DB
	logger  *zap.Logger
	metrics *metrics.Collector
}

func NewVoteService(cfg VoteServiceConfig) (*VoteService, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	return &VoteService{
		db:      cfg.Database,
		logger:  loggerOrNop(cfg.Logger),
		metrics: cfg.Metrics,
	}, nil
}

func (s *VoteService) VotePost(ctx context.Context, viewerID, postID string, t models.VoteType) (VoteResult, error) {
	return s.ApplyVote(ctx, viewerID, VoteRequest{Kind: TargetPost, TargetID: postID, Type: t})
}

func (s *VoteService) VoteComment(ctx context.Context, viewerID, commentID string, t models.VoteType) (VoteResult, error) {
	return s.ApplyVote(ctx, viewerID, VoteRequest{Kind: TargetComment, TargetID: commentID, Type: t})
}

// ApplyVote creates, flips or removes the viewer's vote on the target. The
// look-up and the single write run in one transaction holding a row lock on the
// existing vote; a racing first insert loses on the primary key and surfaces as
// ErrConflict.
func (s *VoteService) ApplyVote(ctx context.Context, viewerID string, req VoteRequest) (VoteResult, error) {
	const op = "votes.apply"
	if err := requireViewer(op, viewerID); err != nil {
		return VoteResult{}, err
	}
	if err := checkInput(op, req); err != nil {
		return VoteResult{}, err
	}
	table := voteTables[req.Kind]

	var result VoteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, op, table.target(), req.TargetID, string(table.kind)); err != nil {
			return err
		}

		where := fmt.Sprintf("user_id = ? AND %s = ?", table.column)
		var existing struct{ Type models.VoteType }
		var current *models.VoteType
		err := tx.Model(table.row("", "", "")).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("type").
			Where(where, viewerID, req.TargetID).
			Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return err
		default:
			current = &existing.Type
		}

		result.Outcome = decideVote(current, req.Type)
		switch result.Outcome {
		case VoteCreated:
			err = tx.Omit(clause.Associations).Create(table.row(viewerID, req.TargetID, req.Type)).Error
		case VoteRemoved:
			err = tx.Where(where, viewerID, req.TargetID).Delete(table.row("", "", "")).Error
		case VoteUpdated:
			err = tx.Model(table.row("", "", "")).Where(where, viewerID, req.TargetID).Update("type", req.Type).Error
		}
		if err != nil {
			return err
		}

		result.Tally, err = table.tally(tx, req.TargetID, viewerID)
		return err
	})
	if err != nil {
		err = storeError(op, err)
		s.metrics.Failure(op, kindLabel(err))
		s.logger.Warn("vote failed",
			zap.String("kind", string(req.Kind)),
			zap.String("target_id", req.TargetID),
			zap.String("user_id", viewerID),
			zap.Error(err))
		return VoteResult{}, err
	}

	s.metrics.Vote(string(req.Kind), string(result.Outcome))
	s.logger.Debug("vote applied",
		zap.String("kind", string(req.Kind)),
		zap.String("target_id", req.TargetID),
		zap.String("user_id", viewerID),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("score", result.Score))
	return result, nil
}
