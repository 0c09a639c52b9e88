package model

import (
	"fmt"
	"strings"
	"time"
)

type Platform string

const (
	PlatformInstagram Platform = "INSTAGRAM"
	PlatformTwitter   Platform = "TWITTER"
	PlatformLinkedIn  Platform = "LINKEDIN"
	PlatformTikTok    Platform = "TIKTOK"
	PlatformFacebook  Platform = "FACEBOOK"
	PlatformYouTube   Platform = "YOUTUBE"
)

func ParsePlatform(raw string) (Platform, error) {
	p := Platform(strings.ToUpper(strings.TrimSpace(raw)))
	switch p {
	case PlatformInstagram, PlatformTwitter, PlatformLinkedIn, PlatformTikTok, PlatformFacebook, PlatformYouTube:
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q", raw)
}

type PostStatus string

const (
	PostDraft     PostStatus = "DRAFT"
	PostScheduled PostStatus = "SCHEDULED"
	PostPublished PostStatus = "PUBLISHED"
	PostFailed    PostStatus = "FAILED"
	PostCancelled PostStatus = "CANCELLED"
)

func ParsePostStatus(raw string) (PostStatus, error) {
	s := PostStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case PostDraft, PostScheduled, PostPublished, PostFailed, PostCancelled:
		return s, nil
	}
	return "", fmt.Errorf("unknown post status %q", raw)
}

type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Platforms   []Platform `gorm:"serializer:json;type:text" json:"platforms"`
	Images      []string   `gorm:"serializer:json;type:text" json:"images"`
	Status      PostStatus `gorm:"size:16;not null;index" json:"status"`
	ScheduledAt *time.Time `gorm:"index" json:"scheduled_at,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
