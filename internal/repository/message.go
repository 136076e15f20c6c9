package repository

import (
	"context"

	"campusride/internal/domain"
)

// MessageRepository defines the persistence operations for the
// per-booking message log.
type MessageRepository interface {
	// Create appends a new message to the log.
	Create(ctx context.Context, msg *domain.ChatMessage) error

	// GetByID retrieves a message by ID.
	GetByID(ctx context.Context, id string) (*domain.ChatMessage, error)

	// ListByBookingID retrieves a booking's messages ordered by SentAt
	// ascending, which equals insertion order.
	ListByBookingID(ctx context.Context, bookingID string) ([]*domain.ChatMessage, error)

	// UpdateStatus updates a message's delivery status.
	UpdateStatus(ctx context.Context, id string, status domain.MessageStatus) error
}
