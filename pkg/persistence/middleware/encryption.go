package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/ports"
)

// envelopeKey holds the sealed interaction inside the envelope's memory.
const envelopeKey = "__encrypted__"

// EncryptionConfig holds the AES-256 keys.
type EncryptionConfig struct {
	// ActiveKey seals every interaction written. It must be 32 bytes.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot open an
	// envelope, so sessions written before a key rotation stay readable.
	FallbackKeys [][]byte
}

// sealer seals with the first AEAD and opens with any of them.
type sealer struct {
	aeads []cipher.AEAD
}

func newSealer(cfg EncryptionConfig) (*sealer, error) {
	if len(cfg.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	s := &sealer{}
	for i, key := range append([][]byte{cfg.ActiveKey}, cfg.FallbackKeys...) {
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		s.aeads = append(s.aeads, aead)
	}
	return s, nil
}

// seal binds the ciphertext to sessionID, so an envelope copied under
// another session fails to open.
func (s *sealer) seal(sessionID string, plaintext []byte) ([]byte, error) {
	aead := s.aeads[0]
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, []byte(sessionID)), nil
}

func (s *sealer) open(sessionID string, sealed []byte) ([]byte, error) {
	for _, aead := range s.aeads {
		if len(sealed) < aead.NonceSize() {
			return nil, errors.New("ciphertext too short")
		}
		nonce, body := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
		if plain, err := aead.Open(nil, nonce, body, []byte(sessionID)); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("no configured key opens the envelope")
}

type encryptionMiddleware struct {
	next   ports.SessionStore
	sealer *sealer
}

// NewEncryptionMiddleware seals interactions with AES-GCM before they reach
// the wrapped store. The stored envelope keeps the session, project, status
// and timestamps readable for monitoring; the node position, history and
// memory exist only in the ciphertext. It panics on an invalid key, which is
// a configuration error.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	s, err := newSealer(config)
	if err != nil {
		panic(err.Error())
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &encryptionMiddleware{next: next, sealer: s}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, sessionID string, it *domain.Interaction) error {
	plain, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("encode interaction %s: %w", sessionID, err)
	}
	sealed, err := m.sealer.seal(sessionID, plain)
	if err != nil {
		return fmt.Errorf("seal interaction %s: %w", sessionID, err)
	}

	return m.next.Save(ctx, sessionID, &domain.Interaction{
		SessionID: it.SessionID,
		ProjectID: it.ProjectID,
		Status:    it.Status,
		StartedAt: it.StartedAt,
		UpdatedAt: it.UpdatedAt,
		Memory:    domain.GameMemory{envelopeKey: base64.StdEncoding.EncodeToString(sealed)},
	})
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) (*domain.Interaction, error) {
	envelope, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// A plain interaction under an encrypting store is refused, never passed through.
	encoded, ok := envelope.Memory[envelopeKey].(string)
	if !ok {
		return nil, fmt.Errorf("interaction %s is missing encrypted data envelope", sessionID)
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode envelope %s: %w", sessionID, err)
	}
	plain, err := m.sealer.open(sessionID, sealed)
	if err != nil {
		return nil, fmt.Errorf("open envelope %s: %w", sessionID, err)
	}

	var it domain.Interaction
	if err := json.Unmarshal(plain, &it); err != nil {
		return nil, fmt.Errorf("decode interaction %s: %w", sessionID, err)
	}
	return &it, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
