package models

import "time"

// RecentSearch is one entry of the bounded recent-searches list.
type RecentSearch struct {
	ID        uint   `gorm:"primaryKey"`
	Query     string `gorm:"size:255;not null"`
	CreatedAt time.Time
}
