package services

import (
	"context"
	"strings"

	"breadit/internal/metrics"
	"breadit/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostInput struct {
	Title        string          `validate:"min=3,max=128"`
	Content      models.RichText `validate:"richtext"`
	SubbreaditID string          `validate:"required,id"`
}

type PostServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
	Metrics  *metrics.Collector
}

type PostService struct {
	db      *gorm.DB
	logger  *zap.Logger
	metrics *metrics.Collector
}

func NewPostService(cfg PostServiceConfig) (*PostService, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	return &PostService{
		db:      cfg.Database,
		logger:  loggerOrNop(cfg.Logger),
		metrics: cfg.Metrics,
	}, nil
}

// CreatePost publishes a post into a community the author is subscribed to.
func (s *PostService) CreatePost(ctx context.Context, viewerID string, in PostInput) (*models.Post, error) {
	const op = "posts.create"
	if err := requireViewer(op, viewerID); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := checkInput(op, in); err != nil {
		return nil, err
	}

	post := models.Post{
		Title:        in.Title,
		Content:      in.Content,
		SubbreaditID: in.SubbreaditID,
		AuthorID:     viewerID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, op, &models.Subbreadit{}, in.SubbreaditID, "subbreadit"); err != nil {
			return err
		}
		ok, err := isSubscribed(tx, viewerID, in.SubbreaditID)
		if err != nil {
			return err
		}
		if !ok {
			return newError(op, ErrForbidden, "subscribe to post")
		}
		if err := tx.Omit(clause.Associations).Create(&post).Error; err != nil {
			return err
		}
		return tx.Preload("Author").Preload("Subbreadit").Take(&post, "id = ?", post.ID).Error
	})
	if err != nil {
		err = storeError(op, err)
		s.metrics.Failure(op, kindLabel(err))
		s.logger.Warn("create post failed",
			zap.String("subbreadit_id", in.SubbreaditID),
			zap.String("user_id", viewerID),
			zap.Error(err))
		return nil, err
	}

	s.metrics.Post()
	s.logger.Info("post created", zap.String("post_id", post.ID), zap.String("subbreadit_id", post.SubbreaditID))
	return &post, nil
}

// GetPost loads one post with everything the detail view needs.
func (s *PostService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	const op = "posts.get"
	if !models.IsID(postID) {
		return nil, newError(op, ErrInvalidInput, "postId is not a valid identifier")
	}
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Subbreadit").
		Preload("Votes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "post_id", "reply_to_id")
		}).
		Take(&post, "id = ?", postID).Error
	if err != nil {
		return nil, storeError(op, err)
	}
	return &post, nil
}
