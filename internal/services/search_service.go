package services

import (
	"strings"

	"codeloom/internal/repositories"
)

// recentSearchCap bounds the list; the oldest entry falls off.
const recentSearchCap = 10

// SearchService keeps the bounded recent-searches list.
type SearchService interface {
	Recent() ([]string, error)
	Record(query string) error
	Clear() error
}

type searchService struct {
	repo repositories.RecentSearchRepository
}

func NewSearchService(repo repositories.RecentSearchRepository) SearchService {
	return &searchService{repo: repo}
}

func (s *searchService) Recent() ([]string, error) {
	rows, err := s.repo.List(recentSearchCap)
	if err != nil {
		return nil, err
	}
	queries := make([]string, 0, len(rows))
	for _, row := range rows {
		queries = append(queries, row.Query)
	}
	return queries, nil
}

// Record stores a non-empty query. Blank input is ignored rather than
// rejected; the search box fires on every submit.
func (s *searchService) Record(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	return s.repo.Add(query, recentSearchCap)
}

func (s *searchService) Clear() error {
	return s.repo.Clear()
}
