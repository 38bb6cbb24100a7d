package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"taxappeal/internal/evidence/models"
	"taxappeal/pkg/domain"
	"taxappeal/pkg/platform/sentinel"
)

// RedisStore keeps entries as JSON under enrichment:<pin> with no expiry.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps a go-redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Get loads and decodes the entry for pin.
func (s *RedisStore) Get(ctx context.Context, pin domain.ParcelID) (*models.EnrichmentEntry, error) {
	raw, err := s.client.Get(ctx, Key(pin)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get enrichment entry: %w", err)
	}
	var entry models.EnrichmentEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode enrichment entry: %w", err)
	}
	return &entry, nil
}

// Upsert writes entry without a TTL.
func (s *RedisStore) Upsert(ctx context.Context, entry *models.EnrichmentEntry) error {
	if entry == nil {
		return fmt.Errorf("enrichment entry is required")
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode enrichment entry: %w", err)
	}
	if err := s.client.Set(ctx, Key(entry.PIN), raw, 0).Err(); err != nil {
		return fmt.Errorf("save enrichment entry: %w", err)
	}
	return nil
}
