package repositories

import (
	"errors"
	"fmt"

	"codeloom/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GenerationSessionRepository interface {
	List() ([]models.GenerationSession, error)
	GetByProjectName(projectName string) (*models.GenerationSession, error)
	Upsert(projectName, platform, language, workspaceJSON, historyJSON string) (*models.GenerationSession, error)
	Rename(oldName, newName string) error
	DeleteByProjectName(projectName string) error
}

type generationSessionRepository struct {
	db *gorm.DB
}

func NewGenerationSessionRepository(db *gorm.DB) GenerationSessionRepository {
	return &generationSessionRepository{db: db}
}

func (r *generationSessionRepository) List() ([]models.GenerationSession, error) {
	var sessions []models.GenerationSession
	res := r.db.Order("updated_at desc").Find(&sessions)
	if res.Error != nil {
		return nil, res.Error
	}
	return sessions, nil
}

func (r *generationSessionRepository) GetByProjectName(projectName string) (*models.GenerationSession, error) {
	var sess models.GenerationSession
	res := r.db.Where("project_name = ?", projectName).Take(&sess)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &sess, nil
}

func (r *generationSessionRepository) Upsert(projectName, platform, language, workspaceJSON, historyJSON string) (*models.GenerationSession, error) {
	if projectName == "" {
		return nil, fmt.Errorf("project name is required")
	}
	sess := models.GenerationSession{
		ProjectName:   projectName,
		Platform:      platform,
		Language:      language,
		WorkspaceJSON: workspaceJSON,
		HistoryJSON:   historyJSON,
	}
	// Upsert on the unique project name index
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"platform", "language", "workspace_json", "history_json", "updated_at"}),
	}).Create(&sess).Error; err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *generationSessionRepository) Rename(oldName, newName string) error {
	if oldName == "" || newName == "" {
		return fmt.Errorf("both names are required")
	}
	return r.db.Model(&models.GenerationSession{}).
		Where("project_name = ?", oldName).
		Update("project_name", newName).Error
}

func (r *generationSessionRepository) DeleteByProjectName(projectName string) error {
	return r.db.Where("project_name = ?", projectName).Delete(&models.GenerationSession{}).Error
}
