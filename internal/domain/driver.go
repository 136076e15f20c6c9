package domain

import "time"

// DriverProfile represents a registered driver and the payment methods
// they accept. The profile's PaymentMethod seeds the ledger entry when
// the driver accepts a booking.
type DriverProfile struct {
	ID            string
	Name          string
	Phone         string
	PaymentMethod PaymentMethod
	CreatedAt     time.Time
}
