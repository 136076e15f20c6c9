package domain

import "time"

// SettlementReceipt summarizes a finalized booking payment.
type SettlementReceipt struct {
	ID        string
	BookingID string
	StudentID string
	DriverID  string
	Fare      float64
	Method    PaymentMethod
	Status    PaymentStatus
	SettledAt time.Time
	CreatedAt time.Time
}
