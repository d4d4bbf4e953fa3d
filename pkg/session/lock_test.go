package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nopStore accepts everything and remembers nothing.
type nopStore struct{}

func (nopStore) Save(context.Context, string, *domain.Interaction) error { return nil }
func (nopStore) Load(context.Context, string) (*domain.Interaction, error) {
	return nil, domain.ErrSessionNotFound
}
func (nopStore) Delete(context.Context, string) error     { return nil }
func (nopStore) List(context.Context) ([]string, error) { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, sid, &domain.Interaction{})
		_ = mgr.Delete(ctx, sid)
	}

	assert.Zero(t, mgr.locks.size(), "locks remaining after every session finished")
}

type recordingLocker struct {
	keys     []string
	ttls     []time.Duration
	unlocked int
}

func (l *recordingLocker) Lock(_ context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.keys = append(l.keys, key)
	l.ttls = append(l.ttls, ttl)
	return func(context.Context) error {
		l.unlocked++
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &recordingLocker{}
	mgr := NewManager(nopStore{}, WithLocker(locker), WithLockTTL(5*time.Second))

	require.NoError(t, mgr.Save(context.Background(), "s1", &domain.Interaction{}))

	assert.Equal(t, []string{"s1"}, locker.keys)
	assert.Equal(t, []time.Duration{5 * time.Second}, locker.ttls)
	assert.Equal(t, 1, locker.unlocked)
}
