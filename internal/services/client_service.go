package services

import (
	"context"
	"fmt"

	"codeloom/internal/llm/client"
)

// NewDefaultGatewayFactory wires the real provider clients behind the
// GatewayFactory contract, resolving API keys and model names at call
// time so key rotation takes effect without a restart.
func NewDefaultGatewayFactory(keys *KeyringService, catalogSvc ModelCatalogService) GatewayFactory {
	return func(ctx context.Context, providerID, tier string, cfg client.GenerationConfig) (client.Gateway, error) {
		mdl, err := catalogSvc.Resolve(providerID, tier)
		if err != nil {
			return nil, err
		}
		apiKey, err := keys.GetApiKey(providerID)
		if err != nil {
			return nil, err
		}

		switch providerID {
		case "gemini":
			return client.NewGeminiClient(ctx, apiKey, client.GeminiModelOptions{Model: mdl.APIName, Cfg: cfg})
		case "anthropic":
			return client.NewClaudeClient(ctx, apiKey, client.ClaudeModelOptions{Model: mdl.APIName, Cfg: cfg})
		case "openai":
			return client.NewOpenAIClient(ctx, apiKey, client.OpenAIModelOptions{Model: mdl.APIName, Cfg: cfg})
		default:
			return nil, fmt.Errorf("provider %s is not supported", providerID)
		}
	}
}
