package postgres

import (
	"context"
	"database/sql"
	"errors"

	"campusride/internal/domain"
	"campusride/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// Create persists a new driver profile.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.DriverProfile) error {
	query := `
		INSERT INTO driver_profiles (id, name, phone, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.Name,
		driver.Phone,
		driver.PaymentMethod,
		driver.CreatedAt,
	)

	return err
}

// GetByID retrieves a driver profile by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.DriverProfile, error) {
	query := `
		SELECT id, name, phone, payment_method, created_at
		FROM driver_profiles WHERE id = $1
	`

	var driver domain.DriverProfile
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&driver.ID,
		&driver.Name,
		&driver.Phone,
		&driver.PaymentMethod,
		&driver.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &driver, nil
}

// GetAll retrieves all driver profiles.
func (r *DriverRepository) GetAll(ctx context.Context) ([]*domain.DriverProfile, error) {
	query := `
		SELECT id, name, phone, payment_method, created_at
		FROM driver_profiles ORDER BY created_at DESC LIMIT 100
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.DriverProfile
	for rows.Next() {
		var driver domain.DriverProfile
		if err := rows.Scan(
			&driver.ID,
			&driver.Name,
			&driver.Phone,
			&driver.PaymentMethod,
			&driver.CreatedAt,
		); err != nil {
			return nil, err
		}
		drivers = append(drivers, &driver)
	}

	return drivers, rows.Err()
}

// Ensure DriverRepository implements repository.DriverRepository.
var _ repository.DriverRepository = (*DriverRepository)(nil)
