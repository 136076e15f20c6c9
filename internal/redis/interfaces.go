package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for distributed per-booking locking.
type LockStoreInterface interface {
	AcquireBookingLock(ctx context.Context, bookingID string, ttl time.Duration) (bool, error)
	ReleaseBookingLock(ctx context.Context, bookingID string) error
}

// PresenceStoreInterface defines the interface for room presence tracking.
type PresenceStoreInterface interface {
	SetPresent(ctx context.Context, bookingID, userID string, ttl time.Duration) error
	IsPresent(ctx context.Context, bookingID, userID string) (bool, error)
	ClearPresence(ctx context.Context, bookingID, userID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface     = (*LockStore)(nil)
	_ PresenceStoreInterface = (*PresenceStore)(nil)
)
