package app

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"claira-social/internal/model"
	"claira-social/internal/pkg/jwtutil"
)

const subscriptionPeriod = 30 * 24 * time.Hour

type UserStore interface {
	CreateWithSubscription(ctx context.Context, user *model.User, sub *model.Subscription) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetSubscription(ctx context.Context, userID uint) (*model.Subscription, error)
}

type AuthService struct {
	users         UserStore
	jwtSecret     string
	jwtExpiration time.Duration
	hashCost      int
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Plan     string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

func NewAuthService(users UserStore, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		users:         users,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		hashCost:      bcrypt.DefaultCost,
	}
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := input.Password

	if len([]rune(name)) < 2 || len(password) < 8 {
		return nil, ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidInput
	}
	plan := model.PlanFree
	if raw := strings.TrimSpace(input.Plan); raw != "" {
		plan = model.Plan(strings.ToUpper(raw))
		if !plan.Valid() {
			return nil, ErrInvalidInput
		}
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	now := time.Now()
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	sub := &model.Subscription{
		Plan:               plan,
		Status:             "ACTIVE",
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.Add(subscriptionPeriod),
	}
	if err := s.users.CreateWithSubscription(ctx, user, sub); err != nil {
		// a concurrent signup can claim the email after the lookup above
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.users.GetByID(ctx, id)
}

// Subscription returns the user's plan, or nil when none was recorded.
func (s *AuthService) Subscription(ctx context.Context, userID uint) (*model.Subscription, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.users.GetSubscription(ctx, userID)
}
