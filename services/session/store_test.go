package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"carebook/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisDraftStore_SaveLoadDelete(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewRedisDraftStore(client, time.Minute)
	ctx := context.Background()

	draft := &models.BookingDraft{
		ID:          "d1",
		OwnerID:     "u1",
		Category:    models.CategoryChildCare,
		Step:        2,
		StartSlot:   4,
		DurationIdx: models.Unset,
		ChildIDs:    []string{"c1"},
	}
	require.NoError(t, store.Save(ctx, draft))

	got, err := store.Load(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, draft.Category, got.Category)
	assert.Equal(t, 4, got.StartSlot)
	assert.Equal(t, models.Unset, got.DurationIdx)
	assert.Equal(t, []string{"c1"}, got.ChildIDs)

	require.NoError(t, store.Delete(ctx, "d1"))
	_, err = store.Load(ctx, "d1")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestRedisDraftStore_Expires(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisDraftStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.BookingDraft{ID: "d2"}))
	mr.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "d2")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestRedisDraftStore_Mutate(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewRedisDraftStore(client, time.Minute)
	ctx := context.Background()

	_, err := store.Mutate(ctx, "gone", func(d *models.BookingDraft) error {
		d.Step = 3
		return nil
	})
	assert.ErrorIs(t, err, ErrDraftNotFound)
	_, err = store.Load(ctx, "gone")
	assert.ErrorIs(t, err, ErrDraftNotFound, "a missing draft is not recreated")

	require.NoError(t, store.Save(ctx, &models.BookingDraft{ID: "live", Step: 1}))
	got, err := store.Mutate(ctx, "live", func(d *models.BookingDraft) error {
		d.Step = 3
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Step)

	boom := errors.New("rejected")
	_, err = store.Mutate(ctx, "live", func(d *models.BookingDraft) error {
		d.Step = 1
		return boom
	})
	assert.ErrorIs(t, err, boom)

	loaded, err := store.Load(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Step, "a rejected change is not written")
}

func TestRedisDraftStore_MutateConcurrent(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewRedisDraftStore(client, time.Minute)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &models.BookingDraft{ID: "busy"}))

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Mutate(ctx, "busy", func(d *models.BookingDraft) error {
				d.SubmitAttempts++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Load(ctx, "busy")
	require.NoError(t, err)
	assert.Equal(t, writers, got.SubmitAttempts)
}

func TestRedisDraftStore_Lock(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewRedisDraftStore(client, time.Minute)
	ctx := context.Background()

	ok, err := store.Lock(ctx, "d3")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Lock(ctx, "d3")
	require.NoError(t, err)
	assert.False(t, ok, "second submit must not take the lock")

	require.NoError(t, store.Unlock(ctx, "d3"))
	ok, err = store.Lock(ctx, "d3")
	require.NoError(t, err)
	assert.True(t, ok)
}
