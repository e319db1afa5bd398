package models

// Model tiers. The fast tier handles everyday prompts; the reasoning tier
// is what complexity routing upgrades a request to.
const (
	TierFast      = "fast"
	TierReasoning = "reasoning"
)

// LLMModel represents a single language model option exposed to the UI.
type LLMModel struct {
	Key          string `json:"key"`
	DisplayName  string `json:"displayName"`
	APIName      string `json:"apiName"`
	ProviderID   string `json:"providerId"`
	ProviderName string `json:"providerName"`
	Tier         string `json:"tier"`
	Enabled      bool   `json:"enabled"`
}

// LLMModelGroup groups models by their provider for presentation.
type LLMModelGroup struct {
	ProviderID   string     `json:"providerId"`
	ProviderName string     `json:"providerName"`
	Models       []LLMModel `json:"models"`
}
