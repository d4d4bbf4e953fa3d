package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactMiddleware_Masking(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := middleware.NewRedactMiddleware([]string{"password", "^player_"})(underlyingStore)

	ctx := context.Background()
	sessionID := "redact-session"
	it := sampleInteraction(sessionID)
	it.Memory["player_name"] = "jdoe"
	it.Memory["vault_password"] = "secret123"
	it.Memory["details"] = map[string]any{
		"address":         "123 St",
		"player_passport": "X-99",
	}
	it.Memory["honor_level"] = 55

	require.NoError(t, secureStore.Save(ctx, sessionID, it))

	assert.Equal(t, "secret123", it.Memory["vault_password"], "the caller's interaction is not modified")
	assert.Equal(t, "X-99", it.Memory["details"].(map[string]any)["player_passport"])

	stored, err := underlyingStore.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, middleware.Redacted, stored.Memory["player_name"])
	assert.Equal(t, middleware.Redacted, stored.Memory["vault_password"])
	assert.Equal(t, 55, stored.Memory["honor_level"])

	details := stored.Memory["details"].(map[string]any)
	assert.Equal(t, "123 St", details["address"])
	assert.Equal(t, middleware.Redacted, details["player_passport"])
}

func TestChain_Order(t *testing.T) {
	underlyingStore := NewMockStore()
	key := make([]byte, 32)

	// Redaction runs before encryption, so the ciphertext never holds the secret.
	store := middleware.Chain(underlyingStore,
		middleware.NewRedactMiddleware([]string{"secret"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "s", sampleInteraction("s")))

	stored, err := underlyingStore.Load(ctx, "s")
	require.NoError(t, err)
	assert.Contains(t, stored.Memory, "__encrypted__")

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, domain.GameMemory{"secret": middleware.Redacted}, loaded.Memory)
}
