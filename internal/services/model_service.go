package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"codeloom/internal/models"
)

type ModelCatalogService interface {
	ListModelGroups() []models.LLMModelGroup
	Resolve(providerID, tier string) (*models.LLMModel, error)
	SetModelEnabled(key string, enabled bool) (*models.LLMModel, error)
}

type modelCatalogService struct {
	mu            sync.RWMutex
	providerOrder []string
	providerNames map[string]string
	models        map[string]*models.LLMModel
}

// catalog is the built-in model table. One fast and one reasoning model
// per provider; complexity routing picks between them.
var catalog = []models.LLMModel{
	{ProviderID: "gemini", ProviderName: "Google Gemini", Tier: models.TierFast, DisplayName: "Gemini 2.5 Flash", APIName: "gemini-2.5-flash"},
	{ProviderID: "gemini", ProviderName: "Google Gemini", Tier: models.TierReasoning, DisplayName: "Gemini 2.5 Pro", APIName: "gemini-2.5-pro"},
	{ProviderID: "anthropic", ProviderName: "Anthropic", Tier: models.TierFast, DisplayName: "Claude Haiku 3.5", APIName: "claude-3-5-haiku-latest"},
	{ProviderID: "anthropic", ProviderName: "Anthropic", Tier: models.TierReasoning, DisplayName: "Claude Sonnet 4", APIName: "claude-sonnet-4-0"},
	{ProviderID: "openai", ProviderName: "OpenAI", Tier: models.TierFast, DisplayName: "GPT-4.1 Mini", APIName: "gpt-4.1-mini"},
	{ProviderID: "openai", ProviderName: "OpenAI", Tier: models.TierReasoning, DisplayName: "GPT-4.1", APIName: "gpt-4.1"},
}

func NewModelCatalogService() ModelCatalogService {
	s := &modelCatalogService{
		providerNames: make(map[string]string),
		models:        make(map[string]*models.LLMModel),
	}
	for _, entry := range catalog {
		mdl := entry
		mdl.Key = modelKey(mdl.ProviderID, mdl.Tier)
		mdl.Enabled = true
		if _, seen := s.providerNames[mdl.ProviderID]; !seen {
			s.providerOrder = append(s.providerOrder, mdl.ProviderID)
			s.providerNames[mdl.ProviderID] = mdl.ProviderName
		}
		s.models[mdl.Key] = &mdl
	}
	return s
}

func (s *modelCatalogService) ListModelGroups() []models.LLMModelGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]models.LLMModelGroup, 0, len(s.providerOrder))
	for _, providerID := range s.providerOrder {
		group := models.LLMModelGroup{
			ProviderID:   providerID,
			ProviderName: s.providerNames[providerID],
		}
		for _, mdl := range s.models {
			if mdl.ProviderID != providerID {
				continue
			}
			group.Models = append(group.Models, *mdl)
		}
		sort.SliceStable(group.Models, func(i, j int) bool {
			return strings.ToLower(group.Models[i].DisplayName) < strings.ToLower(group.Models[j].DisplayName)
		})
		groups = append(groups, group)
	}
	return groups
}

// Resolve picks the model for a provider and tier. A disabled model is
// not selectable even when the tier matches.
func (s *modelCatalogService) Resolve(providerID, tier string) (*models.LLMModel, error) {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if tier != models.TierReasoning {
		tier = models.TierFast
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	mdl, ok := s.models[modelKey(providerID, tier)]
	if !ok {
		return nil, fmt.Errorf("provider %s is not supported", providerID)
	}
	if !mdl.Enabled {
		return nil, fmt.Errorf("model %s is disabled", mdl.Key)
	}
	out := *mdl
	return &out, nil
}

func (s *modelCatalogService) SetModelEnabled(key string, enabled bool) (*models.LLMModel, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("model key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mdl, ok := s.models[key]
	if !ok {
		return nil, fmt.Errorf("model %s not found", key)
	}
	mdl.Enabled = enabled
	out := *mdl
	return &out, nil
}

func modelKey(providerID, tier string) string {
	return providerID + "|" + tier
}
