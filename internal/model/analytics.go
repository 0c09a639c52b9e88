package model

import "time"

type AnalyticsEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	PostID     uint      `gorm:"index" json:"post_id"`
	Platform   Platform  `gorm:"size:16" json:"platform"`
	Metric     string    `gorm:"size:32;not null" json:"metric"`
	Value      int64     `gorm:"not null" json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}
