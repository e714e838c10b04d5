package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"breadit/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FeedQuery selects one page of the post feed. Page is 1-based and ignored when
// Cursor is set.
type FeedQuery struct {
	Page           int
	PageSize       int
	SubbreaditName string
	SubscribedBy   string
	Cursor         string
}

type FeedPage struct {
	Posts      []models.Post
	NextCursor string
}

type FeedServiceConfig struct {
	Database    *gorm.DB
	Logger      *zap.Logger
	MaxPageSize int
}

// FeedService lists posts newest first, by offset page or by keyset cursor.
type FeedService struct {
	db          *gorm.DB
	logger      *zap.Logger
	maxPageSize int
}

func NewFeedService(cfg FeedServiceConfig) (*FeedService, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	maxPageSize := cfg.MaxPageSize
	if maxPageSize <= 0 {
		maxPageSize = 50
	}
	return &FeedService{
		db:          cfg.Database,
		logger:      loggerOrNop(cfg.Logger),
		maxPageSize: maxPageSize,
	}, nil
}

// ListPosts returns posts ordered by (created_at DESC, id DESC). In offset mode
// page n covers rows [(n-1)*size, n*size); posts inserted between two requests
// shift the window by the number of inserts. Cursor mode resumes strictly after
// the last row returned and is not affected by inserts.
func (s *FeedService) ListPosts(ctx context.Context, q FeedQuery) (FeedPage, error) {
	const op = "feed.list"
	if q.PageSize <= 0 {
		return FeedPage{}, newError(op, ErrInvalidInput, "limit must be positive")
	}
	if q.PageSize > s.maxPageSize {
		q.PageSize = s.maxPageSize
	}
	if q.Cursor == "" && q.Page < 1 {
		return FeedPage{}, newError(op, ErrInvalidInput, "page must be at least 1")
	}

	conn := s.db.WithContext(ctx)
	tx := conn.Model(&models.Post{})
	if name := strings.TrimSpace(q.SubbreaditName); name != "" {
		tx = tx.Where("subbreadit_id IN (?)",
			conn.Model(&models.Subbreadit{}).Select("id").Where("name = ?", name))
	}
	if q.SubscribedBy != "" {
		tx = tx.Where("subbreadit_id IN (?)",
			conn.Model(&models.Subscription{}).Select("subbreadit_id").Where("user_id = ?", q.SubscribedBy))
	}

	if q.Cursor != "" {
		at, id, err := decodeCursor(q.Cursor)
		if err != nil {
			return FeedPage{}, newError(op, ErrInvalidInput, "cursor is malformed")
		}
		tx = tx.Where("((created_at < ?) OR (created_at = ? AND id < ?))", at, at, id)
	} else {
		tx = tx.Offset((q.Page - 1) * q.PageSize)
	}

	var posts []models.Post
	err := tx.
		Preload("Author").
		Preload("Subbreadit").
		Preload("Votes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "post_id", "reply_to_id")
		}).
		Order("created_at DESC").
		Order("id DESC").
		Limit(q.PageSize).
		Find(&posts).Error
	if err != nil {
		err = storeError(op, err)
		s.logger.Error("list posts failed", zap.Error(err))
		return FeedPage{}, err
	}

	page := FeedPage{Posts: posts}
	if len(posts) == q.PageSize {
		last := posts[len(posts)-1]
		page.NextCursor = encodeCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

func encodeCursor(at time.Time, id string) string {
	raw := fmt.Sprintf("%d|%s", at.UTC().UnixNano(), id)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", err
	}
	nanos, id, ok := strings.Cut(string(raw), "|")
	if !ok || !models.IsID(id) {
		return time.Time{}, "", fmt.Errorf("cursor: missing id")
	}
	ns, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return time.Time{}, "", err
	}
	return time.Unix(0, ns), id, nil
}

// PostView is a post as displayed to one viewer.
type PostView struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Content      models.RichText   `json:"content"`
	Subbreadit   models.Subbreadit `json:"subbreadit"`
	Author       models.User       `json:"author"`
	CreatedAt    time.Time         `json:"created_at"`
	CommentCount int               `json:"comment_count"`
	Tally
}

func ViewPost(p models.Post, viewerID string) PostView {
	return PostView{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		Subbreadit:   p.Subbreadit,
		Author:       p.Author,
		CreatedAt:    p.CreatedAt,
		CommentCount: len(p.Comments),
		Tally:        Aggregate(p.Votes, viewerID),
	}
}

func ViewPosts(posts []models.Post, viewerID string) []PostView {
	views := make([]PostView, len(posts))
	for i, p := range posts {
		views[i] = ViewPost(p, viewerID)
	}
	return views
}
