package services

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const serviceName = "codeloom"

// KeyringService stores provider API keys in the OS credential store.
// Headless deployments fall back to environment variables.
type KeyringService struct {
}

func NewKeyringService() *KeyringService {
	return &KeyringService{}
}

func (s *KeyringService) StoreApiKey(provider string, apiKey []byte) error {
	if len(apiKey) == 0 {
		return errors.New("API key is empty")
	}
	if provider == "" {
		return errors.New("provider is required")
	}
	return keyring.Set(serviceName, provider, string(apiKey))
}

// GetApiKey resolves a provider key: the credential store first, then
// the <PROVIDER>_API_KEY environment variable, then the generic API_KEY.
func (s *KeyringService) GetApiKey(provider string) (string, error) {
	if provider == "" {
		return "", errors.New("provider is required")
	}
	if key, err := keyring.Get(serviceName, provider); err == nil && key != "" {
		return key, nil
	}
	if key := os.Getenv(envKeyName(provider)); key != "" {
		return key, nil
	}
	if key := os.Getenv("API_KEY"); key != "" {
		return key, nil
	}
	return "", errors.New("no API key configured for " + provider)
}

func (s *KeyringService) DeleteApiKey(provider string) error {
	if provider == "" {
		return errors.New("provider is required")
	}
	return keyring.Delete(serviceName, provider)
}

// HasApiKey reports whether a usable key exists for the provider.
func (s *KeyringService) HasApiKey(provider string) bool {
	key, err := s.GetApiKey(provider)
	return err == nil && key != ""
}

func envKeyName(provider string) string {
	return strings.ToUpper(strings.ReplaceAll(provider, "-", "_")) + "_API_KEY"
}
