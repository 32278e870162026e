// File: services/session/store.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"carebook/models"
	"carebook/utils"

	"github.com/go-redis/redis/v8"
)

// ErrDraftNotFound is returned for drafts that were cancelled, submitted or expired.
var ErrDraftNotFound = errors.New("draft not found or expired")

// ErrDraftContended is returned when Mutate keeps losing to concurrent writers.
var ErrDraftContended = errors.New("draft is being modified concurrently")

const maxMutateRetries = 100

// RedisDraftStore keeps one JSON document per open wizard, expiring after ttl.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDraftStore wraps client. ttl <= 0 falls back to 30 minutes.
func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisDraftStore{client: client, ttl: ttl}
}

func draftKey(id string) string { return utils.DraftKeyPrefix + id }

func lockKey(id string) string { return utils.DraftLockPrefix + id }

// Save writes the draft and refreshes its TTL.
func (s *RedisDraftStore) Save(ctx context.Context, d *models.BookingDraft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(d.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store draft %s: %w", d.ID, err)
	}
	return nil
}

// Mutate applies fn to the stored draft inside a WATCH transaction and
// writes the result back, retrying when another writer got there first.
// A missing draft yields ErrDraftNotFound; an error from fn aborts without
// writing and is returned as is.
func (s *RedisDraftStore) Mutate(ctx context.Context, id string, fn func(*models.BookingDraft) error) (*models.BookingDraft, error) {
	if id == "" {
		return nil, ErrDraftNotFound
	}
	key := draftKey(id)

	var out *models.BookingDraft
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrDraftNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load draft %s: %w", id, err)
		}
		var d models.BookingDraft
		if err := json.Unmarshal(raw, &d); err != nil {
			return fmt.Errorf("failed to parse draft %s: %w", id, err)
		}
		if err := fn(&d); err != nil {
			return err
		}
		data, err := json.Marshal(&d)
		if err != nil {
			return fmt.Errorf("failed to marshal draft: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		out = &d
		return nil
	}

	for i := 0; i < maxMutateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, ErrDraftContended
}

// Load returns the draft or ErrDraftNotFound.
func (s *RedisDraftStore) Load(ctx context.Context, id string) (*models.BookingDraft, error) {
	if id == "" {
		return nil, ErrDraftNotFound
	}
	raw, err := s.client.Get(ctx, draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft %s: %w", id, err)
	}

	var d models.BookingDraft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to parse draft %s: %w", id, err)
	}
	return &d, nil
}

// Delete discards the draft. Deleting a missing draft is not an error.
func (s *RedisDraftStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, draftKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", id, err)
	}
	return nil
}

// Lock takes the submit lock for a draft. It returns false when another
// submission already holds it.
func (s *RedisDraftStore) Lock(ctx context.Context, id string) (bool, error) {
	ok, err := s.client.SetNX(ctx, lockKey(id), "1", utils.DraftLockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to lock draft %s: %w", id, err)
	}
	return ok, nil
}

// Unlock releases the submit lock.
func (s *RedisDraftStore) Unlock(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, lockKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to unlock draft %s: %w", id, err)
	}
	return nil
}
