package models

import "time"

// GenerationSession persists one project's workspace and transcript so a
// returning client can resume where it left off. Files and history are
// stored as JSON blobs; the live workspace stays an in-memory concern.
type GenerationSession struct {
	ID            uint   `gorm:"primaryKey"`
	ProjectName   string `gorm:"size:255;not null;uniqueIndex"`
	Platform      string `gorm:"size:32"`
	Language      string `gorm:"size:32"`
	WorkspaceJSON string `gorm:"type:text"`
	HistoryJSON   string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
