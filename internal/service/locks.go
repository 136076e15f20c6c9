package service

import "sync"

// BookingLocks serializes mutating operations per booking within this
// process: all writes against one booking's session, room, log and
// ledger observe a single total order, while different bookings
// proceed fully in parallel.
type BookingLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewBookingLocks creates a new BookingLocks.
func NewBookingLocks() *BookingLocks {
	return &BookingLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock enters the critical section for bookingID and returns the
// function that leaves it.
func (l *BookingLocks) Lock(bookingID string) func() {
	l.mu.Lock()
	m, ok := l.locks[bookingID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[bookingID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
