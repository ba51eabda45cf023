package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	s := &domain.Session{Token: "t1", UserID: 7, Email: "ann@x.com", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Put(ctx, s))

	got, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, int64(7), got.UserID)
	require.Equal(t, "ann@x.com", got.Email)

	got.Email = "mutated@x.com"
	again, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, "ann@x.com", again.Email)

	require.NoError(t, store.Delete(ctx, "t1"))
	_, err = store.Get(ctx, "t1")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, store.Delete(ctx, "t1"))

	require.Error(t, store.Put(ctx, &domain.Session{}))
}

func TestMemoryStoreExpiryAndSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Put(ctx, &domain.Session{Token: "old", ExpiresAt: now.Add(-time.Second)}))
	require.NoError(t, store.Put(ctx, &domain.Session{Token: "new", ExpiresAt: now.Add(time.Hour)}))

	_, err := store.Get(ctx, "old")
	require.ErrorIs(t, err, ErrNotFound)

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	require.Equal(t, 1, store.Len())
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token := fmt.Sprintf("t%d", i)
			_ = store.Put(ctx, &domain.Session{Token: token, ExpiresAt: time.Now().Add(time.Minute)})
			_, _ = store.Get(ctx, token)
			if i%2 == 0 {
				_ = store.Delete(ctx, token)
			}
		}(i)
	}
	wg.Wait()
	require.Equal(t, 25, store.Len())
}
