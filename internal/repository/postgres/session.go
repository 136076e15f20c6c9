package postgres

import (
	"context"
	"database/sql"
	"errors"

	"campusride/internal/domain"
	"campusride/internal/repository"
)

// SessionRepository is a PostgreSQL implementation of repository.SessionRepository.
type SessionRepository struct {
	q Querier
}

// NewSessionRepository creates a new PostgreSQL session repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{q: db}
}

// NewSessionRepositoryWithTx creates a session repository using a transaction.
func NewSessionRepositoryWithTx(tx *sql.Tx) *SessionRepository {
	return &SessionRepository{q: tx}
}

const sessionColumns = `booking_id, student_id, driver_id, phase, fare,
		pickup_lat, pickup_lng, destination_lat, destination_lng,
		requested_at, accepted_at, started_at, completed_at, cancelled_at, cancel_reason`

// Create persists a new ride session.
func (r *SessionRepository) Create(ctx context.Context, session *domain.RideSession) error {
	query := `
		INSERT INTO ride_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.q.ExecContext(ctx, query,
		session.BookingID,
		session.StudentID,
		nullString(session.DriverID),
		session.Phase,
		session.Fare,
		session.PickupLat,
		session.PickupLng,
		session.DestinationLat,
		session.DestinationLng,
		session.RequestedAt,
		nullTime(session.AcceptedAt),
		nullTime(session.StartedAt),
		nullTime(session.CompletedAt),
		nullTime(session.CancelledAt),
		session.CancelReason,
	)

	return err
}

// GetByBookingID retrieves a session by booking ID.
func (r *SessionRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.RideSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM ride_sessions WHERE booking_id = $1`

	session, err := scanSession(r.q.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return session, nil
}

// GetAll retrieves recent sessions.
func (r *SessionRepository) GetAll(ctx context.Context) ([]*domain.RideSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM ride_sessions ORDER BY requested_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSessions(rows)
}

// ListByParticipant retrieves sessions where the given ID is the
// student or the driver.
func (r *SessionRepository) ListByParticipant(ctx context.Context, participantID string) ([]*domain.RideSession, error) {
	query := `
		SELECT ` + sessionColumns + ` FROM ride_sessions
		WHERE student_id = $1 OR driver_id = $1
		ORDER BY requested_at DESC LIMIT 100
	`

	rows, err := r.q.QueryContext(ctx, query, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSessions(rows)
}

// Update updates an existing session.
func (r *SessionRepository) Update(ctx context.Context, session *domain.RideSession) error {
	query := `
		UPDATE ride_sessions
		SET student_id = $1, driver_id = $2, phase = $3, fare = $4,
			pickup_lat = $5, pickup_lng = $6, destination_lat = $7, destination_lng = $8,
			requested_at = $9, accepted_at = $10, started_at = $11, completed_at = $12,
			cancelled_at = $13, cancel_reason = $14
		WHERE booking_id = $15
	`

	result, err := r.q.ExecContext(ctx, query,
		session.StudentID,
		nullString(session.DriverID),
		session.Phase,
		session.Fare,
		session.PickupLat,
		session.PickupLng,
		session.DestinationLat,
		session.DestinationLng,
		session.RequestedAt,
		nullTime(session.AcceptedAt),
		nullTime(session.StartedAt),
		nullTime(session.CompletedAt),
		nullTime(session.CancelledAt),
		session.CancelReason,
		session.BookingID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(s scanner) (*domain.RideSession, error) {
	var session domain.RideSession
	var driverID sql.NullString
	var acceptedAt, startedAt, completedAt, cancelledAt sql.NullTime

	err := s.Scan(
		&session.BookingID,
		&session.StudentID,
		&driverID,
		&session.Phase,
		&session.Fare,
		&session.PickupLat,
		&session.PickupLng,
		&session.DestinationLat,
		&session.DestinationLng,
		&session.RequestedAt,
		&acceptedAt,
		&startedAt,
		&completedAt,
		&cancelledAt,
		&session.CancelReason,
	)
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		session.DriverID = driverID.String
	}
	if acceptedAt.Valid {
		session.AcceptedAt = acceptedAt.Time
	}
	if startedAt.Valid {
		session.StartedAt = startedAt.Time
	}
	if completedAt.Valid {
		session.CompletedAt = completedAt.Time
	}
	if cancelledAt.Valid {
		session.CancelledAt = cancelledAt.Time
	}

	return &session, nil
}

func collectSessions(rows *sql.Rows) ([]*domain.RideSession, error) {
	var sessions []*domain.RideSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// Ensure SessionRepository implements repository.SessionRepository.
var _ repository.SessionRepository = (*SessionRepository)(nil)
