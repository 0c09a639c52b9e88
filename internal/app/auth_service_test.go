package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"claira-social/internal/model"
	"claira-social/internal/pkg/jwtutil"
	"claira-social/internal/repository"
)

func newTestAuth(t *testing.T) (*AuthService, *repository.UserRepository) {
	users := repository.NewUserRepository(newTestDB(t))
	svc := NewAuthService(users, "test-secret", time.Hour)
	svc.hashCost = bcrypt.MinCost
	return svc, users
}

func TestAuthService_SignupCreatesUserAndSubscription(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestAuth(t)

	result, err := svc.Signup(ctx, SignupInput{Name: "Maya", Email: " Maya@Example.com ", Password: "supersecret", Plan: "pro"})
	require.NoError(t, err)
	assert.Equal(t, "maya@example.com", result.User.Email)

	claims, err := jwtutil.ParseToken("test-secret", result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)

	sub, err := users.GetSubscription(ctx, result.User.ID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, model.PlanPro, sub.Plan)
	assert.Equal(t, "ACTIVE", sub.Status)
	assert.WithinDuration(t, sub.CurrentPeriodStart.Add(30*24*time.Hour), sub.CurrentPeriodEnd, time.Second)

	_, err = svc.Signup(ctx, SignupInput{Name: "Maya", Email: "maya@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

// lateUsers hides existing rows from the email lookup, as a concurrent signup
// that has not committed yet would.
type lateUsers struct {
	*repository.UserRepository
}

func (lateUsers) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, nil
}

func TestAuthService_SignupRaceReportsEmailExists(t *testing.T) {
	ctx := context.Background()
	_, users := newTestAuth(t)
	svc := NewAuthService(lateUsers{users}, "test-secret", time.Hour)
	svc.hashCost = bcrypt.MinCost

	_, err := svc.Signup(ctx, SignupInput{Name: "Maya", Email: "maya@example.com", Password: "supersecret"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupInput{Name: "Maya", Email: "maya@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthService_SignupValidation(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	cases := []SignupInput{
		{Name: "M", Email: "m@example.com", Password: "supersecret"},
		{Name: "Maya", Email: "not-an-email", Password: "supersecret"},
		{Name: "Maya", Email: "m@example.com", Password: "short"},
		{Name: "Maya", Email: "m@example.com", Password: "supersecret", Plan: "PLATINUM"},
	}
	for _, in := range cases {
		_, err := svc.Signup(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidInput, "input %+v", in)
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuth(t)

	_, err := svc.Signup(ctx, SignupInput{Name: "Lena", Email: "lena@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, LoginInput{Email: "LENA@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = svc.Login(ctx, LoginInput{Email: "lena@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
