// Package redisstore keeps short-lived state (invoice drafts, OTP challenges)
// in Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/port"
)

const draftKeyPrefix = "invoicedesk:draft:"

type draftStore struct {
	rdb *redis.Client
}

// NewDraftStore creates a Redis-backed DraftStore.
func NewDraftStore(rdb *redis.Client) port.DraftStore {
	return &draftStore{rdb: rdb}
}

func draftKey(id uuid.UUID) string {
	return draftKeyPrefix + id.String()
}

func (s *draftStore) Save(ctx context.Context, draft *domain.Draft, ttl time.Duration) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("draftStore.Save marshal: %w", err)
	}
	if err := s.rdb.Set(ctx, draftKey(draft.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("draftStore.Save: %w", err)
	}
	return nil
}

func (s *draftStore) Get(ctx context.Context, id uuid.UUID) (*domain.Draft, error) {
	data, err := s.rdb.Get(ctx, draftKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, fmt.Errorf("draftStore.Get: %w", err)
	}
	var d domain.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("draftStore.Get unmarshal: %w", err)
	}
	return &d, nil
}

func (s *draftStore) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.rdb.Del(ctx, draftKey(id)).Result()
	if err != nil {
		return fmt.Errorf("draftStore.Delete: %w", err)
	}
	if n == 0 {
		return domain.ErrDraftNotFound
	}
	return nil
}
