package repository

import (
	"context"

	"campusride/internal/domain"
)

// PaymentRepository defines the persistence operations for payment
// ledger entries.
type PaymentRepository interface {
	// Create persists a new ledger entry.
	Create(ctx context.Context, entry *domain.PaymentLedgerEntry) error

	// GetByBookingID retrieves the ledger entry for a booking.
	GetByBookingID(ctx context.Context, bookingID string) (*domain.PaymentLedgerEntry, error)

	// Update updates an existing ledger entry.
	Update(ctx context.Context, entry *domain.PaymentLedgerEntry) error
}
