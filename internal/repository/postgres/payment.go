package postgres

import (
	"context"
	"database/sql"
	"errors"

	"campusride/internal/domain"
	"campusride/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

// Create persists a new ledger entry.
func (r *PaymentRepository) Create(ctx context.Context, entry *domain.PaymentLedgerEntry) error {
	query := `
		INSERT INTO payment_ledger (booking_id, method, status, fare, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		entry.BookingID,
		entry.Method,
		entry.Status,
		entry.Fare,
		nullTime(entry.PaidAt),
		entry.CreatedAt,
	)

	return err
}

// GetByBookingID retrieves the ledger entry for a booking.
func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.PaymentLedgerEntry, error) {
	query := `
		SELECT booking_id, method, status, fare, paid_at, created_at
		FROM payment_ledger WHERE booking_id = $1
	`

	var entry domain.PaymentLedgerEntry
	var paidAt sql.NullTime

	err := r.q.QueryRowContext(ctx, query, bookingID).Scan(
		&entry.BookingID,
		&entry.Method,
		&entry.Status,
		&entry.Fare,
		&paidAt,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if paidAt.Valid {
		entry.PaidAt = paidAt.Time
	}

	return &entry, nil
}

// Update updates an existing ledger entry.
func (r *PaymentRepository) Update(ctx context.Context, entry *domain.PaymentLedgerEntry) error {
	query := `
		UPDATE payment_ledger
		SET status = $1, paid_at = $2
		WHERE booking_id = $3
	`

	result, err := r.q.ExecContext(ctx, query,
		entry.Status,
		nullTime(entry.PaidAt),
		entry.BookingID,
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

// Ensure PaymentRepository implements repository.PaymentRepository.
var _ repository.PaymentRepository = (*PaymentRepository)(nil)
