package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceStore tracks which participants currently have a chat room
// open. Entries expire on their own, so a client that goes away
// without a clean disconnect simply ages out.
type PresenceStore struct {
	client *redis.Client
}

// NewPresenceStore creates a new PresenceStore.
func NewPresenceStore(client *redis.Client) *PresenceStore {
	return &PresenceStore{client: client}
}

// DefaultPresenceTTL is how long a heartbeat keeps a participant
// marked present in a room.
const DefaultPresenceTTL = 45 * time.Second

func presenceKey(bookingID, userID string) string {
	return fmt.Sprintf("presence:room:%s:%s", bookingID, userID)
}

// SetPresent marks a participant present in a room for the given TTL.
func (s *PresenceStore) SetPresent(ctx context.Context, bookingID, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, presenceKey(bookingID, userID), "1", ttl).Err()
}

// IsPresent reports whether a participant is currently present in a room.
func (s *PresenceStore) IsPresent(ctx context.Context, bookingID, userID string) (bool, error) {
	n, err := s.client.Exists(ctx, presenceKey(bookingID, userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ClearPresence removes a participant's presence mark.
func (s *PresenceStore) ClearPresence(ctx context.Context, bookingID, userID string) error {
	return s.client.Del(ctx, presenceKey(bookingID, userID)).Err()
}
