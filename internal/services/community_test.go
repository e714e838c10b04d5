package services

import (
	"context"
	"testing"

	"breadit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommunitySubscribesCreator(t *testing.T) {
	conn := openTestDB(t)
	owner := seedUser(t, conn, "owner")
	svc, err := NewCommunityService(CommunityServiceConfig{Database: conn})
	require.NoError(t, err)
	ctx := context.Background()

	community, err := svc.Create(ctx, owner.ID, "golang")
	require.NoError(t, err)
	assert.Equal(t, "golang", community.Name)
	assert.Equal(t, int64(1), community.SubscriberCount)

	var sub models.Subscription
	require.NoError(t, conn.Take(&sub, "user_id = ? AND subbreadit_id = ?", owner.ID, community.ID).Error)

	_, err = svc.Create(ctx, owner.ID, "golang")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "subbreadit already exists", Detail(err))
}

func TestCreateCommunityValidatesName(t *testing.T) {
	conn := openTestDB(t)
	owner := seedUser(t, conn, "owner")
	svc, err := NewCommunityService(CommunityServiceConfig{Database: conn})
	require.NoError(t, err)

	for _, name := range []string{"", "ab", "has space", "way_too_long_for_a_community", "dash-ed"} {
		_, err := svc.Create(context.Background(), owner.ID, name)
		assert.ErrorIs(t, err, ErrInvalidInput, name)
	}
	_, err = svc.Create(context.Background(), "", "golang")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSearchCommunitiesByPrefix(t *testing.T) {
	conn := openTestDB(t)
	owner := seedUser(t, conn, "owner")
	reader := seedUser(t, conn, "reader")
	svc, err := NewCommunityService(CommunityServiceConfig{Database: conn})
	require.NoError(t, err)
	subs, err := NewSubscriptionService(SubscriptionServiceConfig{Database: conn})
	require.NoError(t, err)
	ctx := context.Background()

	var golang *models.Subbreadit
	for _, name := range []string{"golang", "gophers", "gonuts", "gotime", "gorm", "godev", "rust"} {
		c, err := svc.Create(ctx, owner.ID, name)
		require.NoError(t, err)
		if name == "golang" {
			golang = c
		}
	}
	_, err = subs.Subscribe(ctx, reader.ID, golang.ID)
	require.NoError(t, err)

	found, err := svc.Search(ctx, "GO")
	require.NoError(t, err)
	assert.Len(t, found, 5)
	for _, c := range found {
		assert.NotEqual(t, "rust", c.Name)
	}

	found, err = svc.Search(ctx, "gola")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(2), found[0].SubscriberCount)

	for _, query := range []string{"g%", "go_", "  ", "gö"} {
		found, err = svc.Search(ctx, query)
		require.NoError(t, err, query)
		assert.Empty(t, found, query)
	}

	got, err := svc.GetByName(ctx, "golang")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.SubscriberCount)

	_, err = svc.GetByName(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
