package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"breadit/internal/metrics"
	"breadit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDecideVote(t *testing.T) {
	up, down := models.VoteUp, models.VoteDown
	tests := []struct {
		name      string
		current   *models.VoteType
		requested models.VoteType
		want      VoteOutcome
	}{
		{"no vote", nil, models.VoteUp, VoteCreated},
		{"same direction", &up, models.VoteUp, VoteRemoved},
		{"opposite direction", &down, models.VoteUp, VoteUpdated},
		{"down toggles off", &down, models.VoteDown, VoteRemoved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decideVote(tt.current, tt.requested))
		})
	}
}

func newVoteFixture(t *testing.T) (*VoteService, *models.User, *models.Post) {
	t.Helper()
	conn := openTestDB(t)
	author := seedUser(t, conn, "author")
	community := seedCommunity(t, conn, "golang", author)
	post := seedPost(t, conn, community, author, "hello world", time.Now())
	svc, err := NewVoteService(VoteServiceConfig{Database: conn, Metrics: metrics.New()})
	require.NoError(t, err)
	return svc, author, post
}

func countVotes(t *testing.T, svc *VoteService, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, svc.db.Model(model).Count(&n).Error)
	return n
}

func TestVotePostTransitions(t *testing.T) {
	svc, _, post := newVoteFixture(t)
	voter := seedUser(t, svc.db, "voter").ID
	ctx := context.Background()

	res, err := svc.VotePost(ctx, voter, post.ID, models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, VoteCreated, res.Outcome)
	assert.Equal(t, 1, res.Score)
	require.NotNil(t, res.ViewerVote)
	assert.Equal(t, models.VoteUp, *res.ViewerVote)

	res, err = svc.VotePost(ctx, voter, post.ID, models.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, VoteUpdated, res.Outcome)
	assert.Equal(t, -1, res.Score)
	assert.Equal(t, int64(1), countVotes(t, svc, &models.PostVote{}))

	res, err = svc.VotePost(ctx, voter, post.ID, models.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, VoteRemoved, res.Outcome)
	assert.Equal(t, 0, res.Score)
	assert.Nil(t, res.ViewerVote)
	assert.Equal(t, int64(0), countVotes(t, svc, &models.PostVote{}))
}

func TestVotePostTallyAcrossVoters(t *testing.T) {
	svc, _, post := newVoteFixture(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob"} {
		_, err := svc.VotePost(ctx, seedUser(t, svc.db, name).ID, post.ID, models.VoteUp)
		require.NoError(t, err)
	}
	res, err := svc.VotePost(ctx, seedUser(t, svc.db, "carol").ID, post.ID, models.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, models.VoteDown, *res.ViewerVote)
}

func TestVoteCommentToggle(t *testing.T) {
	svc, author, post := newVoteFixture(t)
	comment := seedComment(t, svc.db, post, author, "first", nil)
	voter := seedUser(t, svc.db, "voter").ID
	ctx := context.Background()

	res, err := svc.VoteComment(ctx, voter, comment.ID, models.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, VoteCreated, res.Outcome)
	assert.Equal(t, -1, res.Score)

	res, err = svc.VoteComment(ctx, voter, comment.ID, models.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, VoteRemoved, res.Outcome)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, int64(0), countVotes(t, svc, &models.CommentVote{}))
}

func TestApplyVoteRejects(t *testing.T) {
	svc, author, post := newVoteFixture(t)
	u := author.ID
	ctx := context.Background()

	tests := []struct {
		name   string
		viewer string
		req    VoteRequest
		kind   error
	}{
		{"anonymous", "", VoteRequest{Kind: TargetPost, TargetID: post.ID, Type: models.VoteUp}, ErrUnauthenticated},
		{"bad type", u, VoteRequest{Kind: TargetPost, TargetID: post.ID, Type: "SIDEWAYS"}, ErrInvalidInput},
		{"bad id", u, VoteRequest{Kind: TargetPost, TargetID: "nope", Type: models.VoteUp}, ErrInvalidInput},
		{"bad kind", u, VoteRequest{Kind: "story", TargetID: post.ID, Type: models.VoteUp}, ErrInvalidInput},
		{"missing post", u, VoteRequest{Kind: TargetPost, TargetID: models.NewID(), Type: models.VoteUp}, ErrNotFound},
		{"missing comment", u, VoteRequest{Kind: TargetComment, TargetID: models.NewID(), Type: models.VoteUp}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ApplyVote(ctx, tt.viewer, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
	assert.Equal(t, int64(0), countVotes(t, svc, &models.PostVote{}))
}

func TestApplyVoteConcurrentKeepsOneRow(t *testing.T) {
	svc, _, post := newVoteFixture(t)
	racer := seedUser(t, svc.db, "racer").ID
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dir := models.VoteUp
			if i%2 == 1 {
				dir = models.VoteDown
			}
			_, err := svc.VotePost(ctx, racer, post.ID, dir)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			assert.True(t, errors.Is(err, ErrConflict) || errors.Is(err, ErrStoreUnavailable), err.Error())
		}
	}
	assert.LessOrEqual(t, countVotes(t, svc, &models.PostVote{}), int64(1))
}

func TestVotePostUnknownVoter(t *testing.T) {
	svc, _, post := newVoteFixture(t)

	_, err := svc.VotePost(context.Background(), models.NewID(), post.ID, models.VoteUp)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(0), countVotes(t, svc, &models.PostVote{}))
}

// A competing insert lands between the look-up and the create, the way a
// second request would on a store with row-level concurrency.
func TestApplyVoteLosingFirstInsertIsConflict(t *testing.T) {
	svc, author, post := newVoteFixture(t)
	ctx := context.Background()

	fired := false
	err := svc.db.Callback().Create().Before("gorm:create").Register("test:competing_vote", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*models.PostVote); !ok || fired {
			return
		}
		fired = true
		now := time.Now()
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO post_votes (user_id, post_id, type, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			author.ID, post.ID, models.VoteDown, now, now)
	})
	require.NoError(t, err)

	_, err = svc.VotePost(ctx, author.ID, post.ID, models.VoteUp)
	require.Error(t, err)
	assert.True(t, fired)
	assert.ErrorIs(t, err, ErrConflict)

	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.True(t, svcErr.Retriable())
	assert.Equal(t, int64(0), countVotes(t, svc, &models.PostVote{}))
}
