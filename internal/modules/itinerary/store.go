// README: Current-itinerary store backed by Redis (one JSON document per owner with TTL).
package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "roamly:itinerary:current:"

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func currentKey(owner string) string {
	return keyPrefix + owner
}

// Save replaces owner's current itinerary.
func (s *Store) Save(ctx context.Context, owner string, it *TripItinerary) error {
	data, err := json.Marshal(it)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, currentKey(owner), data, s.ttl).Err()
}

func (s *Store) Get(ctx context.Context, owner string) (*TripItinerary, error) {
	data, err := s.rdb.Get(ctx, currentKey(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var it TripItinerary
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *Store) Delete(ctx context.Context, owner string) error {
	n, err := s.rdb.Del(ctx, currentKey(owner)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
