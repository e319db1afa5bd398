package services

import (
	"testing"

	"codeloom/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_PicksTierModel(t *testing.T) {
	svc := NewModelCatalogService()

	fast, err := svc.Resolve("gemini", models.TierFast)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", fast.APIName)

	reasoning, err := svc.Resolve("gemini", models.TierReasoning)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", reasoning.APIName)
}

func TestResolve_UnknownTierFallsBackToFast(t *testing.T) {
	svc := NewModelCatalogService()

	mdl, err := svc.Resolve("openai", "turbo")
	require.NoError(t, err)
	assert.Equal(t, models.TierFast, mdl.Tier)
}

func TestResolve_UnknownProvider(t *testing.T) {
	svc := NewModelCatalogService()

	_, err := svc.Resolve("cohere", models.TierFast)
	assert.Error(t, err)
}

func TestSetModelEnabled_DisabledModelNotResolvable(t *testing.T) {
	svc := NewModelCatalogService()

	mdl, err := svc.SetModelEnabled("anthropic|fast", false)
	require.NoError(t, err)
	assert.False(t, mdl.Enabled)

	_, err = svc.Resolve("anthropic", models.TierFast)
	assert.Error(t, err)

	// The reasoning sibling stays available.
	_, err = svc.Resolve("anthropic", models.TierReasoning)
	assert.NoError(t, err)
}

func TestListModelGroups_GroupedByProvider(t *testing.T) {
	svc := NewModelCatalogService()

	groups := svc.ListModelGroups()
	require.Len(t, groups, 3)
	for _, g := range groups {
		assert.Len(t, g.Models, 2)
		for _, m := range g.Models {
			assert.Equal(t, g.ProviderID, m.ProviderID)
			assert.NotEmpty(t, m.APIName)
		}
	}
}
