package repository

import (
	"context"

	"campusride/internal/domain"
)

// DriverRepository defines the persistence operations for driver
// payment profiles.
type DriverRepository interface {
	// Create persists a new driver profile.
	Create(ctx context.Context, driver *domain.DriverProfile) error

	// GetByID retrieves a driver profile by ID.
	GetByID(ctx context.Context, id string) (*domain.DriverProfile, error)

	// GetAll retrieves all driver profiles.
	GetAll(ctx context.Context) ([]*domain.DriverProfile, error)
}
