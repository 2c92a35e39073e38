package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lexora-app/lexora/internal/shared"
)

// OutcomeStore keeps finished background-job results around for polling.
// Results expire after the TTL; a missing key reads as not found.
type OutcomeStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOutcomeStore constructs an OutcomeStore.
func NewOutcomeStore(client *redis.Client, ttl time.Duration) *OutcomeStore {
	return &OutcomeStore{client: client, ttl: ttl}
}

func outcomeKey(jobID string) string {
	return "jobs:outcome:" + jobID
}

// Save stores a job outcome as JSON.
func (s *OutcomeStore) Save(ctx context.Context, jobID string, outcome any) error {
	body, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("platform/cache: marshal outcome: %w", err)
	}
	if err := s.client.Set(ctx, outcomeKey(jobID), body, s.ttl).Err(); err != nil {
		return fmt.Errorf("platform/cache: save outcome: %w", err)
	}
	return nil
}

// Load reads a job outcome into target.
func (s *OutcomeStore) Load(ctx context.Context, jobID string, target any) error {
	body, err := s.client.Get(ctx, outcomeKey(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return shared.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("platform/cache: load outcome: %w", err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("platform/cache: decode outcome: %w", err)
	}
	return nil
}
