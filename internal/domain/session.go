package domain

import "time"

// Phase represents the lifecycle phase of a ride session.
type Phase string

const (
	PhaseRequested  Phase = "REQUESTED"
	PhaseAccepted   Phase = "ACCEPTED"
	PhaseInProgress Phase = "IN_PROGRESS"
	PhaseCompleted  Phase = "COMPLETED"
	PhaseCancelled  Phase = "CANCELLED"
)

// Terminal reports whether the phase admits no further transitions.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseCancelled
}

// CanTransitionTo reports whether the session phase machine allows
// moving from p to next. The forward path is
// REQUESTED -> ACCEPTED -> IN_PROGRESS -> COMPLETED;
// CANCELLED is reachable from any non-terminal phase.
func (p Phase) CanTransitionTo(next Phase) bool {
	if next == PhaseCancelled {
		return !p.Terminal()
	}

	switch p {
	case PhaseRequested:
		return next == PhaseAccepted
	case PhaseAccepted:
		return next == PhaseInProgress
	case PhaseInProgress:
		return next == PhaseCompleted
	default:
		return false
	}
}

// Role identifies the kind of actor issuing an operation.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleDriver  Role = "DRIVER"
	RoleAdmin   Role = "ADMIN"
)

// Caller is the verified identity forwarded by the external session
// provider. The coordinator trusts the identity but re-validates the
// role against the booking's participant fields.
type Caller struct {
	ID   string
	Role Role
}

// RideSession represents one booking's ride lifecycle. The coordinator
// is the sole writer of Phase; chat and payment writes are gated by it.
type RideSession struct {
	BookingID      string
	StudentID      string
	DriverID       string // set when the session is accepted
	Phase          Phase
	Fare           float64 // fixed once the ride is priced at request time
	PickupLat      float64
	PickupLng      float64
	DestinationLat float64
	DestinationLng float64
	RequestedAt    time.Time
	AcceptedAt     time.Time
	StartedAt      time.Time
	CompletedAt    time.Time
	CancelledAt    time.Time
	CancelReason   string
}
