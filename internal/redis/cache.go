package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore caches session summaries in Redis for the read surface.
// Every phase transition invalidates the cached summary, so a stale
// read is bounded by the TTL.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// SessionCacheTTL bounds staleness of cached session summaries; phase
// changes during the ride make a short TTL appropriate.
const SessionCacheTTL = 10 * time.Second

const sessionCachePrefix = "cache:session:"

// CachedSession is the cached read model of a ride session.
type CachedSession struct {
	BookingID      string  `json:"booking_id"`
	StudentID      string  `json:"student_id"`
	DriverID       string  `json:"driver_id,omitempty"`
	Phase          string  `json:"phase"`
	Fare           float64 `json:"fare"`
	PickupLat      float64 `json:"pickup_lat"`
	PickupLng      float64 `json:"pickup_lng"`
	DestinationLat float64 `json:"destination_lat"`
	DestinationLng float64 `json:"destination_lng"`
}

// GetSession retrieves a session summary from cache. A cache miss
// returns (nil, nil).
func (s *CacheStore) GetSession(ctx context.Context, bookingID string) (*CachedSession, error) {
	key := sessionCachePrefix + bookingID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var session CachedSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SetSession stores a session summary in cache.
func (s *CacheStore) SetSession(ctx context.Context, session *CachedSession) error {
	key := sessionCachePrefix + session.BookingID
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, SessionCacheTTL).Err()
}

// InvalidateSession removes a session summary from cache.
func (s *CacheStore) InvalidateSession(ctx context.Context, bookingID string) error {
	return s.client.Del(ctx, sessionCachePrefix+bookingID).Err()
}
