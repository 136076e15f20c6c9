package domain

import "time"

// PaymentMethod represents the settlement methods a driver accepts.
// It is copied from the driver's payment profile at acceptance time
// and is immutable for the session.
type PaymentMethod string

const (
	PaymentMethodCashOnly   PaymentMethod = "CASH_ONLY"
	PaymentMethodUpi        PaymentMethod = "UPI"
	PaymentMethodCashAndUpi PaymentMethod = "CASH_AND_UPI"
)

// SupportsUpi reports whether the method permits UPI settlement.
func (m PaymentMethod) SupportsUpi() bool {
	return m == PaymentMethodUpi || m == PaymentMethodCashAndUpi
}

// SupportsCash reports whether the method permits cash settlement.
func (m PaymentMethod) SupportsCash() bool {
	return m == PaymentMethodCashOnly || m == PaymentMethodCashAndUpi
}

// PaymentStatus represents the settlement status of a ledger entry.
// Transitions are forward-only; PAID, CASH_COLLECTED and VOIDED are
// terminal.
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "PENDING"
	PaymentStatusPaid          PaymentStatus = "PAID"
	PaymentStatusCashCollected PaymentStatus = "CASH_COLLECTED"
	PaymentStatusVoided        PaymentStatus = "VOIDED"
)

// Final reports whether the status is terminal.
func (s PaymentStatus) Final() bool {
	return s != PaymentStatusPending
}

// PaymentLedgerEntry is the payment record scoped to one booking.
type PaymentLedgerEntry struct {
	BookingID string
	Method    PaymentMethod
	Status    PaymentStatus
	Fare      float64   // fixed when the entry is created
	PaidAt    time.Time // set exactly once on the first terminal transition
	CreatedAt time.Time
}
