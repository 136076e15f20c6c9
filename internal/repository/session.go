package repository

import (
	"context"

	"campusride/internal/domain"
)

// SessionRepository defines the persistence operations for ride sessions.
type SessionRepository interface {
	// Create persists a new ride session.
	Create(ctx context.Context, session *domain.RideSession) error

	// GetByBookingID retrieves a session by booking ID.
	GetByBookingID(ctx context.Context, bookingID string) (*domain.RideSession, error)

	// GetAll retrieves recent sessions for the admin read surface.
	GetAll(ctx context.Context) ([]*domain.RideSession, error)

	// ListByParticipant retrieves sessions where the given ID is the
	// student or the driver.
	ListByParticipant(ctx context.Context, participantID string) ([]*domain.RideSession, error)

	// Update updates an existing session.
	Update(ctx context.Context, session *domain.RideSession) error
}
