package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claira-social/internal/repository"
)

func TestSocialService_ConnectUpsertsAccount(t *testing.T) {
	ctx := context.Background()
	clock := time.UnixMilli(1000)
	oauth := StubOAuthExchanger{Now: func() time.Time { return clock }}
	inv := &recordingInvalidator{}
	svc := NewSocialService(repository.NewSocialAccountRepository(newTestDB(t)), oauth, inv)

	first, created, err := svc.Connect(ctx, ConnectInput{UserID: 1, Platform: "instagram", Code: "c", State: "s"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "mock_instagram_token_1000", first.AccessToken)
	assert.Equal(t, "testuser_instagram", first.PlatformUsername)

	clock = time.UnixMilli(2000)
	second, created, err := svc.Connect(ctx, ConnectInput{UserID: 1, Platform: "INSTAGRAM"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "mock_instagram_token_2000", second.AccessToken)

	accounts, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
	assert.Equal(t, 2, inv.count(1))
}

func TestSocialService_ConnectUnsupportedPlatform(t *testing.T) {
	svc := NewSocialService(repository.NewSocialAccountRepository(newTestDB(t)), StubOAuthExchanger{}, nil)

	_, _, err := svc.Connect(context.Background(), ConnectInput{UserID: 1, Platform: "TIKTOK"})
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)

	_, _, err = svc.Connect(context.Background(), ConnectInput{UserID: 1, Platform: "friendster"})
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
}

func TestSocialService_LinkAndDisconnect(t *testing.T) {
	ctx := context.Background()
	svc := NewSocialService(repository.NewSocialAccountRepository(newTestDB(t)), StubOAuthExchanger{}, nil)

	_, err := svc.Link(ctx, LinkAccountInput{UserID: 1, Platform: "TIKTOK", AccessToken: "t"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	acct, err := svc.Link(ctx, LinkAccountInput{UserID: 1, Platform: "TIKTOK", AccessToken: "t", PlatformUserID: "42", PlatformUsername: "dancer"})
	require.NoError(t, err)
	assert.True(t, acct.IsActive)

	assert.ErrorIs(t, svc.Disconnect(ctx, 2, acct.ID), ErrAccountNotFound)
	require.NoError(t, svc.Disconnect(ctx, 1, acct.ID))

	accounts, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}
