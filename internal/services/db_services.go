package services

import (
	"codeloom/internal/repositories"

	"gorm.io/gorm"
)

// DbServices aggregates the domain services backed by the database.
type DbServices struct {
	Sessions GenerationSessionService
	Searches SearchService
}

// NewDbServices constructs the service container using repositories backed by db.
func NewDbServices(db *gorm.DB) *DbServices {
	sessionRepo := repositories.NewGenerationSessionRepository(db)
	searchRepo := repositories.NewRecentSearchRepository(db)

	return &DbServices{
		Sessions: NewGenerationSessionService(sessionRepo),
		Searches: NewSearchService(searchRepo),
	}
}
