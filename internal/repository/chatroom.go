package repository

import (
	"context"

	"campusride/internal/domain"
)

// ChatRoomRepository defines the persistence operations for chat rooms.
type ChatRoomRepository interface {
	// Create persists a new chat room.
	Create(ctx context.Context, room *domain.ChatRoom) error

	// GetByBookingID retrieves the room for a booking.
	GetByBookingID(ctx context.Context, bookingID string) (*domain.ChatRoom, error)

	// ListByParticipant retrieves rooms where the given ID is the
	// student or the driver.
	ListByParticipant(ctx context.Context, participantID string) ([]*domain.ChatRoom, error)

	// Update updates an existing room.
	Update(ctx context.Context, room *domain.ChatRoom) error
}
