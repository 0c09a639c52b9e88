package model

import "time"

// CycleRecord is a tracked menstrual cycle entry. The chat pipeline only
// reads the latest one per owner.
type CycleRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	StartDate time.Time `gorm:"not null;index" json:"start_date"`
	Symptoms  []string  `gorm:"serializer:json;type:text" json:"symptoms"`
	Mood      []string  `gorm:"serializer:json;type:text" json:"mood"`
	CreatedAt time.Time `json:"created_at"`
}
