package services

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"breadit/internal/db"
	"breadit/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open(db.Options{Driver: "sqlite", DSN: db.MemoryDSN("services"), Quiet: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     &name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "x",
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func seedCommunity(t *testing.T, conn *gorm.DB, name string, creator *models.User) *models.Subbreadit {
	t.Helper()
	community := &models.Subbreadit{Name: name, CreatorID: &creator.ID}
	require.NoError(t, conn.Omit(clause.Associations).Create(community).Error)
	require.NoError(t, conn.Omit(clause.Associations).
		Create(&models.Subscription{UserID: creator.ID, SubbreaditID: community.ID}).Error)
	return community
}

func seedPost(t *testing.T, conn *gorm.DB, community *models.Subbreadit, author *models.User, title string, at time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:        title,
		Content:      richText(t, title),
		SubbreaditID: community.ID,
		AuthorID:     author.ID,
		CreatedAt:    at,
	}
	require.NoError(t, conn.Omit(clause.Associations).Create(post).Error)
	return post
}

func seedComment(t *testing.T, conn *gorm.DB, post *models.Post, author *models.User, text string, replyTo *string) *models.Comment {
	t.Helper()
	comment := &models.Comment{Text: text, PostID: post.ID, AuthorID: author.ID, ReplyToID: replyTo}
	require.NoError(t, conn.Omit(clause.Associations).Create(comment).Error)
	return comment
}

func richText(t *testing.T, text string) models.RichText {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"blocks": []map[string]any{{"type": "paragraph", "data": map[string]string{"text": text}}},
	})
	require.NoError(t, err)
	return models.RichText(raw)
}
