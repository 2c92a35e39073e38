package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/lexora-app/lexora/internal/shared"
)

type fakeOutcome struct {
	Applied []int64 `json:"applied"`
	Denied  []int64 `json:"denied"`
}

func TestOutcomeStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewOutcomeStore(client, time.Minute)

	saved := fakeOutcome{Applied: []int64{1, 2}, Denied: []int64{3}}
	require.NoError(t, store.Save(context.Background(), "job-1", saved))

	var loaded fakeOutcome
	require.NoError(t, store.Load(context.Background(), "job-1", &loaded))
	require.Equal(t, saved, loaded)
}

func TestOutcomeStoreMissingKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewOutcomeStore(client, time.Minute)

	var loaded fakeOutcome
	err := store.Load(context.Background(), "absent", &loaded)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOutcomeStoreExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewOutcomeStore(client, time.Second)

	require.NoError(t, store.Save(context.Background(), "job-2", fakeOutcome{Applied: []int64{9}}))
	mr.FastForward(2 * time.Second)

	var loaded fakeOutcome
	err := store.Load(context.Background(), "job-2", &loaded)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
