package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/rcflow/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "rcflow:session:"

// Store implements ports.SessionStore using Redis.
// Interactions live under prefix+sessionID; a sorted set under prefix+"index"
// scores every session by its expiry so List can prune lazily.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	codec  Codec
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the expiration for sessions.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithCodec replaces the default MessagePack codec.
func WithCodec(c Codec) Option {
	return func(s *Store) {
		s.codec = c
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
		codec:  MsgPackCodec{},
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// noExpiry scores sessions saved without a TTL (2100-01-01).
const noExpiry = 4102444800

// expiry is the index score of a session saved now.
func (s *Store) expiry() float64 {
	if s.ttl <= 0 {
		return noExpiry
	}
	return float64(time.Now().Add(s.ttl).Unix())
}

// Save writes the encoded interaction and its index entry in one pipeline.
func (s *Store) Save(ctx context.Context, sessionID string, interaction *domain.Interaction) error {
	data, err := s.codec.Encode(interaction)
	if err != nil {
		return fmt.Errorf("encode session %s (%s): %w", sessionID, s.codec.Name(), err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Set(ctx, s.key(sessionID), data, s.ttl)
		pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: s.expiry(), Member: sessionID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save %s: %w", sessionID, err)
	}
	return nil
}

// Load retrieves the interaction from Redis.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Interaction, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	switch {
	case errors.Is(err, backend.Nil):
		return nil, domain.ErrSessionNotFound
	case err != nil:
		return nil, fmt.Errorf("redis load %s: %w", sessionID, err)
	}

	var interaction domain.Interaction
	if err := s.codec.Decode(data, &interaction); err != nil {
		return nil, fmt.Errorf("decode session %s (%s): %w", sessionID, s.codec.Name(), err)
	}
	if interaction.Memory == nil {
		interaction.Memory = domain.GameMemory{}
	}
	return &interaction, nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Del(ctx, s.key(sessionID))
		pipe.ZRem(ctx, s.indexKey(), sessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", sessionID, err)
	}
	return nil
}

// List returns live sessions, pruning expired entries from the index first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", now).Err(); err != nil {
		return nil, fmt.Errorf("redis prune index: %w", err)
	}

	sessions, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list sessions: %w", err)
	}
	return sessions, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
