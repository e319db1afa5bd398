package repositories

import (
	"fmt"

	"codeloom/internal/models"

	"gorm.io/gorm"
)

type RecentSearchRepository interface {
	List(limit int) ([]models.RecentSearch, error)
	Add(query string, cap int) error
	Clear() error
}

type recentSearchRepository struct {
	db *gorm.DB
}

func NewRecentSearchRepository(db *gorm.DB) RecentSearchRepository {
	return &recentSearchRepository{db: db}
}

func (r *recentSearchRepository) List(limit int) ([]models.RecentSearch, error) {
	var searches []models.RecentSearch
	q := r.db.Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if res := q.Find(&searches); res.Error != nil {
		return nil, res.Error
	}
	return searches, nil
}

// Add records a query and trims the list to cap entries, newest kept.
// Re-searching an existing query moves it to the front instead of
// duplicating it.
func (r *recentSearchRepository) Add(query string, cap int) error {
	if query == "" {
		return fmt.Errorf("query is required")
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("query = ?", query).Delete(&models.RecentSearch{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.RecentSearch{Query: query}).Error; err != nil {
			return err
		}
		if cap <= 0 {
			return nil
		}
		var overflow []models.RecentSearch
		if err := tx.Order("created_at desc").Offset(cap).Find(&overflow).Error; err != nil {
			return err
		}
		for _, s := range overflow {
			if err := tx.Delete(&s).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *recentSearchRepository) Clear() error {
	return r.db.Where("1 = 1").Delete(&models.RecentSearch{}).Error
}
