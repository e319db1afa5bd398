package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyring_StoreAndGet(t *testing.T) {
	keyring.MockInit()
	svc := NewKeyringService()

	require.NoError(t, svc.StoreApiKey("gemini", []byte("sk-test")))
	key, err := svc.GetApiKey("gemini")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)

	require.NoError(t, svc.DeleteApiKey("gemini"))
	assert.False(t, svc.HasApiKey("gemini"))
}

func TestKeyring_EnvFallback(t *testing.T) {
	keyring.MockInit()
	svc := NewKeyringService()

	t.Setenv("OPENAI_API_KEY", "env-key")
	key, err := svc.GetApiKey("openai")
	require.NoError(t, err)
	assert.Equal(t, "env-key", key)
}

func TestKeyring_EmptyInputsRejected(t *testing.T) {
	svc := NewKeyringService()

	assert.Error(t, svc.StoreApiKey("", []byte("x")))
	assert.Error(t, svc.StoreApiKey("gemini", nil))
	_, err := svc.GetApiKey("")
	assert.Error(t, err)
}
