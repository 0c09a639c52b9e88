package app

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"claira-social/internal/model"
)

const maxPostContent = 2200

type PostStore interface {
	Create(ctx context.Context, post *model.Post) error
	Save(ctx context.Context, post *model.Post) error
	ListByUserID(ctx context.Context, userID uint, limit int) ([]model.Post, error)
	GetByIDAndUserID(ctx context.Context, postID, userID uint) (*model.Post, error)
	DeleteByIDAndUserID(ctx context.Context, postID, userID uint) (bool, error)
}

// StatsInvalidator is told when a user's dashboard numbers may have changed.
type StatsInvalidator interface {
	MarkDirty(ctx context.Context, userID uint) error
}

type PostService struct {
	posts PostStore
	stats StatsInvalidator
}

type CreatePostInput struct {
	UserID      uint
	Content     string
	Platforms   []string
	Images      []string
	ScheduledAt *time.Time
}

// UpdatePostInput leaves a field untouched when it is nil.
type UpdatePostInput struct {
	UserID      uint
	PostID      uint
	Content     *string
	Images      *[]string
	ScheduledAt *time.Time
	Status      *string
}

type SchedulePostInput struct {
	UserID      uint
	PostID      uint
	ScheduledAt time.Time
	Platforms   []string
}

func NewPostService(posts PostStore, stats StatsInvalidator) *PostService {
	return &PostService{posts: posts, stats: stats}
}

func (s *PostService) Create(ctx context.Context, input CreatePostInput) (*model.Post, error) {
	if input.UserID == 0 {
		return nil, ErrUnauthorized
	}
	content, err := validContent(input.Content)
	if err != nil {
		return nil, err
	}
	platforms, err := parsePlatforms(input.Platforms)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		UserID:      input.UserID,
		Content:     content,
		Platforms:   platforms,
		Images:      cleanStrings(input.Images),
		ScheduledAt: input.ScheduledAt,
		Status:      model.PostDraft,
	}
	if input.ScheduledAt != nil {
		post.Status = model.PostScheduled
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	s.invalidate(ctx, input.UserID)
	return post, nil
}

func (s *PostService) List(ctx context.Context, userID uint) ([]model.Post, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	return s.posts.ListByUserID(ctx, userID, 0)
}

func (s *PostService) Get(ctx context.Context, userID, postID uint) (*model.Post, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	if postID == 0 {
		return nil, ErrInvalidInput
	}
	post, err := s.posts.GetByIDAndUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, input UpdatePostInput) (*model.Post, error) {
	post, err := s.Get(ctx, input.UserID, input.PostID)
	if err != nil {
		return nil, err
	}

	if input.Content != nil {
		content, err := validContent(*input.Content)
		if err != nil {
			return nil, err
		}
		post.Content = content
	}
	if input.Images != nil {
		post.Images = cleanStrings(*input.Images)
	}
	if input.ScheduledAt != nil {
		at := *input.ScheduledAt
		post.ScheduledAt = &at
	}
	if input.Status != nil {
		status, err := model.ParsePostStatus(*input.Status)
		if err != nil {
			return nil, ErrInvalidInput
		}
		post.Status = status
	}
	if post.Status == model.PostScheduled && post.ScheduledAt == nil {
		return nil, ErrInvalidInput
	}

	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	s.invalidate(ctx, input.UserID)
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, userID, postID uint) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	if postID == 0 {
		return ErrInvalidInput
	}
	deleted, err := s.posts.DeleteByIDAndUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPostNotFound
	}
	s.invalidate(ctx, userID)
	return nil
}

// Schedule sets the publish time and marks the post SCHEDULED. When platforms
// are given they replace the post's targets. The dispatcher picks the post up
// once its time has come.
func (s *PostService) Schedule(ctx context.Context, input SchedulePostInput) (*model.Post, error) {
	if input.ScheduledAt.IsZero() {
		return nil, ErrInvalidInput
	}
	post, err := s.Get(ctx, input.UserID, input.PostID)
	if err != nil {
		return nil, err
	}
	if len(input.Platforms) > 0 {
		platforms, err := parsePlatforms(input.Platforms)
		if err != nil {
			return nil, err
		}
		post.Platforms = platforms
	}

	at := input.ScheduledAt.UTC()
	post.ScheduledAt = &at
	post.Status = model.PostScheduled
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	s.invalidate(ctx, input.UserID)
	return post, nil
}

func (s *PostService) invalidate(ctx context.Context, userID uint) {
	if s.stats != nil {
		_ = s.stats.MarkDirty(ctx, userID)
	}
}

func validContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" || utf8.RuneCountInString(content) > maxPostContent {
		return "", ErrInvalidInput
	}
	return content, nil
}

func parsePlatforms(raw []string) ([]model.Platform, error) {
	if len(raw) == 0 {
		return nil, ErrInvalidInput
	}
	seen := make(map[model.Platform]struct{}, len(raw))
	out := make([]model.Platform, 0, len(raw))
	for _, r := range raw {
		p, err := model.ParsePlatform(r)
		if err != nil {
			return nil, ErrInvalidInput
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
