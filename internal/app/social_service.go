package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"claira-social/internal/model"
)

type SocialAccountStore interface {
	Create(ctx context.Context, account *model.SocialAccount) error
	Save(ctx context.Context, account *model.SocialAccount) error
	ListByUserID(ctx context.Context, userID uint) ([]model.SocialAccount, error)
	FindByPlatformUser(ctx context.Context, userID uint, platform model.Platform, platformUserID string) (*model.SocialAccount, error)
	DeleteByIDAndUserID(ctx context.Context, accountID, userID uint) (bool, error)
}

// OAuthGrant is what a platform hands back after the authorization code exchange.
type OAuthGrant struct {
	AccessToken      string
	PlatformUserID   string
	PlatformUsername string
}

type OAuthExchanger interface {
	Exchange(ctx context.Context, platform model.Platform, code, state string) (*OAuthGrant, error)
}

// StubOAuthExchanger fakes the code exchange for the platforms that have a
// connect flow. No network calls are made.
type StubOAuthExchanger struct {
	Now func() time.Time
}

func (e StubOAuthExchanger) Exchange(_ context.Context, platform model.Platform, _, _ string) (*OAuthGrant, error) {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	stamp := now().UnixMilli()
	switch platform {
	case model.PlatformInstagram:
		return &OAuthGrant{AccessToken: fmt.Sprintf("mock_instagram_token_%d", stamp), PlatformUserID: "123456789", PlatformUsername: "testuser_instagram"}, nil
	case model.PlatformTwitter:
		return &OAuthGrant{AccessToken: fmt.Sprintf("mock_twitter_token_%d", stamp), PlatformUserID: "987654321", PlatformUsername: "testuser_twitter"}, nil
	case model.PlatformLinkedIn:
		return &OAuthGrant{AccessToken: fmt.Sprintf("mock_linkedin_token_%d", stamp), PlatformUserID: "456789123", PlatformUsername: "testuser_linkedin"}, nil
	}
	return nil, ErrUnsupportedPlatform
}

type SocialService struct {
	accounts SocialAccountStore
	oauth    OAuthExchanger
	stats    StatsInvalidator
}

type ConnectInput struct {
	UserID   uint
	Platform string
	Code     string
	State    string
}

type LinkAccountInput struct {
	UserID           uint
	Platform         string
	AccessToken      string
	PlatformUserID   string
	PlatformUsername string
}

func NewSocialService(accounts SocialAccountStore, oauth OAuthExchanger, stats StatsInvalidator) *SocialService {
	return &SocialService{accounts: accounts, oauth: oauth, stats: stats}
}

// Connect runs the OAuth exchange and links the resulting account, refreshing
// the token of an already linked one. The bool reports whether a new account
// was created.
func (s *SocialService) Connect(ctx context.Context, input ConnectInput) (*model.SocialAccount, bool, error) {
	if input.UserID == 0 {
		return nil, false, ErrUnauthorized
	}
	platform, err := model.ParsePlatform(input.Platform)
	if err != nil {
		return nil, false, ErrUnsupportedPlatform
	}
	grant, err := s.oauth.Exchange(ctx, platform, input.Code, input.State)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.accounts.FindByPlatformUser(ctx, input.UserID, platform, grant.PlatformUserID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		existing.AccessToken = grant.AccessToken
		existing.PlatformUsername = grant.PlatformUsername
		existing.IsActive = true
		if err := s.accounts.Save(ctx, existing); err != nil {
			return nil, false, err
		}
		s.invalidate(ctx, input.UserID)
		return existing, false, nil
	}

	account := &model.SocialAccount{
		UserID:           input.UserID,
		Platform:         platform,
		PlatformUserID:   grant.PlatformUserID,
		PlatformUsername: grant.PlatformUsername,
		AccessToken:      grant.AccessToken,
		IsActive:         true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, false, err
	}
	s.invalidate(ctx, input.UserID)
	return account, true, nil
}

func (s *SocialService) Link(ctx context.Context, input LinkAccountInput) (*model.SocialAccount, error) {
	if input.UserID == 0 {
		return nil, ErrUnauthorized
	}
	platform, err := model.ParsePlatform(input.Platform)
	if err != nil {
		return nil, ErrInvalidInput
	}
	token := strings.TrimSpace(input.AccessToken)
	userID := strings.TrimSpace(input.PlatformUserID)
	username := strings.TrimSpace(input.PlatformUsername)
	if token == "" || userID == "" || username == "" {
		return nil, ErrInvalidInput
	}

	account := &model.SocialAccount{
		UserID:           input.UserID,
		Platform:         platform,
		PlatformUserID:   userID,
		PlatformUsername: username,
		AccessToken:      token,
		IsActive:         true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	s.invalidate(ctx, input.UserID)
	return account, nil
}

func (s *SocialService) List(ctx context.Context, userID uint) ([]model.SocialAccount, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	return s.accounts.ListByUserID(ctx, userID)
}

func (s *SocialService) Disconnect(ctx context.Context, userID, accountID uint) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	if accountID == 0 {
		return ErrInvalidInput
	}
	deleted, err := s.accounts.DeleteByIDAndUserID(ctx, accountID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAccountNotFound
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *SocialService) invalidate(ctx context.Context, userID uint) {
	if s.stats != nil {
		_ = s.stats.MarkDirty(ctx, userID)
	}
}
