package db_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"breadit/internal/db"
	"breadit/internal/models"
	"breadit/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Run locally:
//   GO_TEST_INTEGRATION=1 go test ./internal/db -run Postgres -v -count=1

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "breadit"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/breadit?sslmode=disable", host, port.Port())

	conn, err := db.Open(db.Options{Driver: "postgres", DSN: dsn, Quiet: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })
	return conn
}

func TestPostgresConstraintClassification(t *testing.T) {
	conn := startPostgres(t)
	user := models.User{Email: "a@example.com", PasswordHash: "x"}
	require.NoError(t, conn.Create(&user).Error)

	err := conn.Create(&models.User{Email: "a@example.com", PasswordHash: "x"}).Error
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err), err.Error())

	err = conn.Omit(clause.Associations).Create(&models.Subscription{UserID: user.ID, SubbreaditID: models.NewID()}).Error
	require.Error(t, err)
	assert.True(t, db.IsForeignKeyViolation(err), err.Error())
}

func TestPostgresConcurrentVotesKeepOneRow(t *testing.T) {
	conn := startPostgres(t)
	author := models.User{Email: "author@example.com", PasswordHash: "x"}
	require.NoError(t, conn.Create(&author).Error)
	community := models.Subbreadit{Name: "golang", CreatorID: &author.ID}
	require.NoError(t, conn.Omit(clause.Associations).Create(&community).Error)
	post := models.Post{Title: "race", Content: models.RichText(`{"blocks":[]}`), SubbreaditID: community.ID, AuthorID: author.ID}
	require.NoError(t, conn.Omit(clause.Associations).Create(&post).Error)

	votes, err := services.NewVoteService(services.VoteServiceConfig{Database: conn})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dir := models.VoteUp
			if i%3 == 0 {
				dir = models.VoteDown
			}
			_, err := votes.VotePost(context.Background(), author.ID, post.ID, dir)
			if err != nil {
				kind := services.KindOf(err)
				assert.True(t, kind == services.ErrConflict || kind == services.ErrStoreUnavailable, err.Error())
			}
		}(i)
	}
	wg.Wait()

	var rows int64
	require.NoError(t, conn.Model(&models.PostVote{}).Where("post_id = ?", post.ID).Count(&rows).Error)
	assert.LessOrEqual(t, rows, int64(1))
}
