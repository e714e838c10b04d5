package services

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"time"

	"breadit/internal/metrics"
	"breadit/internal/models"
	"breadit/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentInput struct {
	PostID    string  `validate:"required,id"`
	Text      string  `validate:"required,max=10000"`
	ReplyToID *string `validate:"omitempty,id"`
}

type CommentServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
	Metrics  *metrics.Collector
}

// CommentService writes comments and reads them back as two-level threads.
type CommentService struct {
	db      *gorm.DB
	logger  *zap.Logger
	metrics *metrics.Collector
}

func NewCommentService(cfg CommentServiceConfig) (*CommentService, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	return &CommentService{
		db:      cfg.Database,
		logger:  loggerOrNop(cfg.Logger),
		metrics: cfg.Metrics,
	}, nil
}

// CreateComment stores a comment on a post. A reply to a reply is re-parented
// onto the top-level ancestor, so threads never grow past depth two.
func (s *CommentService) CreateComment(ctx context.Context, viewerID string, in CommentInput) (*models.Comment, error) {
	const op = "comments.create"
	if err := requireViewer(op, viewerID); err != nil {
		return nil, err
	}
	in.Text = strings.TrimSpace(in.Text)
	if in.ReplyToID != nil && strings.TrimSpace(*in.ReplyToID) == "" {
		in.ReplyToID = nil
	}
	if err := checkInput(op, in); err != nil {
		return nil, err
	}

	comment := models.Comment{
		Text:     in.Text,
		PostID:   in.PostID,
		AuthorID: viewerID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, op, &models.Post{}, in.PostID, "post"); err != nil {
			return err
		}
		if in.ReplyToID != nil {
			parentID, err := resolveReplyTarget(tx, op, in.PostID, *in.ReplyToID)
			if err != nil {
				return err
			}
			comment.ReplyToID = &parentID
		}
		if err := tx.Omit(clause.Associations).Create(&comment).Error; err != nil {
			return err
		}
		return tx.Preload("Author").Take(&comment, "id = ?", comment.ID).Error
	})
	if err != nil {
		err = storeError(op, err)
		s.metrics.Failure(op, kindLabel(err))
		s.logger.Warn("create comment failed",
			zap.String("post_id", in.PostID),
			zap.String("user_id", viewerID),
			zap.Error(err))
		return nil, err
	}

	s.metrics.Comment(comment.ReplyToID != nil)
	s.logger.Debug("comment created",
		zap.String("comment_id", comment.ID),
		zap.String("post_id", comment.PostID),
		zap.Bool("reply", comment.ReplyToID != nil))
	return &comment, nil
}

// resolveReplyTarget returns the id the new comment should point at: the
// replied-to comment itself when it is top-level, otherwise its ancestor.
func resolveReplyTarget(tx *gorm.DB, op, postID, replyToID string) (string, error) {
	var target models.Comment
	err := tx.Select("id", "post_id", "reply_to_id").Take(&target, "id = ?", replyToID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", newError(op, ErrInvalidInput, "replyToId does not reference a comment")
	}
	if err != nil {
		return "", err
	}
	if target.PostID != postID {
		return "", newError(op, ErrInvalidInput, "replyToId belongs to another post")
	}
	if target.ReplyToID != nil {
		return *target.ReplyToID, nil
	}
	return target.ID, nil
}

// ListComments returns every comment on the post in creation order.
func (s *CommentService) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	const op = "comments.list"
	if !models.IsID(postID) {
		return nil, newError(op, ErrInvalidInput, "postId is not a valid identifier")
	}
	var comments []models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, op, &models.Post{}, postID, "post"); err != nil {
			return err
		}
		return tx.Preload("Author").Preload("Votes").
			Where("post_id = ?", postID).
			Order("created_at ASC, id ASC").
			Find(&comments).Error
	})
	if err != nil {
		return nil, storeError(op, err)
	}
	return comments, nil
}

// CommentView is a comment as displayed to one viewer.
type CommentView struct {
	ID        string        `json:"id"`
	PostID    string        `json:"post_id"`
	ReplyToID *string       `json:"reply_to_id"`
	Text      string        `json:"text"`
	TextHTML  template.HTML `json:"text_html"`
	Author    models.User   `json:"author"`
	CreatedAt time.Time     `json:"created_at"`
	Tally
}

// Thread is a top-level comment with its replies attached.
type Thread struct {
	CommentView
	Replies []CommentView `json:"replies"`
}

// BuildThreads groups a flat comment set into top-level threads in two passes.
// Replies whose ancestor is not in the set are dropped.
func BuildThreads(comments []models.Comment, viewerID string) []Thread {
	threads := make([]Thread, 0)
	index := make(map[string]int)
	for _, c := range comments {
		if c.IsTopLevel() {
			index[c.ID] = len(threads)
			threads = append(threads, Thread{CommentView: ViewComment(c, viewerID), Replies: []CommentView{}})
		}
	}
	for _, c := range comments {
		if c.IsTopLevel() {
			continue
		}
		if i, ok := index[*c.ReplyToID]; ok {
			threads[i].Replies = append(threads[i].Replies, ViewComment(c, viewerID))
		}
	}
	return threads
}

// ViewComment renders one comment for the viewer.
func ViewComment(c models.Comment, viewerID string) CommentView {
	return CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		ReplyToID: c.ReplyToID,
		Text:      c.Text,
		TextHTML:  utils.RenderMarkdown(c.Text),
		Author:    c.Author,
		CreatedAt: c.CreatedAt,
		Tally:     Aggregate(c.Votes, viewerID),
	}
}
