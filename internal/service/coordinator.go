package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"campusride/internal/domain"
	"campusride/internal/redis"
	"campusride/internal/repository"
)

// bookingLockTTL bounds how long a crashed instance can hold a
// booking's distributed lock.
const bookingLockTTL = 10 * time.Second

// Coordinator is the single source of truth for the ride session
// phase. Every phase transition runs inside the booking's critical
// section and a single database transaction, so the session, chat room
// and ledger entry always change together.
type Coordinator struct {
	tx                  repository.TxRunner
	sessionRepo         repository.SessionRepository
	roomRepo            repository.ChatRoomRepository
	paymentRepo         repository.PaymentRepository
	driverRepo          repository.DriverRepository
	locks               *BookingLocks
	lockStore           redis.LockStoreInterface
	cacheStore          *redis.CacheStore
	notificationService *NotificationService
}

// NewCoordinator creates a new Coordinator. lockStore, cacheStore and
// notificationService are optional.
func NewCoordinator(
	tx repository.TxRunner,
	sessionRepo repository.SessionRepository,
	roomRepo repository.ChatRoomRepository,
	paymentRepo repository.PaymentRepository,
	driverRepo repository.DriverRepository,
	locks *BookingLocks,
	lockStore redis.LockStoreInterface,
	cacheStore *redis.CacheStore,
	notificationService *NotificationService,
) *Coordinator {
	return &Coordinator{
		tx:                  tx,
		sessionRepo:         sessionRepo,
		roomRepo:            roomRepo,
		paymentRepo:         paymentRepo,
		driverRepo:          driverRepo,
		locks:               locks,
		lockStore:           lockStore,
		cacheStore:          cacheStore,
		notificationService: notificationService,
	}
}

// RequestRideRequest contains the parameters for requesting a ride.
type RequestRideRequest struct {
	StudentID      string
	PickupLat      float64
	PickupLng      float64
	DestinationLat float64
	DestinationLng float64
}

// RequestRide creates a new session in REQUESTED with the fare priced
// once from the pickup/destination distance.
func (c *Coordinator) RequestRide(ctx context.Context, req RequestRideRequest) (*domain.RideSession, error) {
	if req.StudentID == "" {
		return nil, ErrInvalidStudentID
	}
	if !isValidLatitude(req.PickupLat) || !isValidLongitude(req.PickupLng) {
		return nil, ErrInvalidLocation
	}
	if !isValidLatitude(req.DestinationLat) || !isValidLongitude(req.DestinationLng) {
		return nil, ErrInvalidLocation
	}

	session := &domain.RideSession{
		BookingID:      uuid.New().String(),
		StudentID:      req.StudentID,
		Phase:          domain.PhaseRequested,
		Fare:           QuoteFare(req.PickupLat, req.PickupLng, req.DestinationLat, req.DestinationLng),
		PickupLat:      req.PickupLat,
		PickupLng:      req.PickupLng,
		DestinationLat: req.DestinationLat,
		DestinationLng: req.DestinationLng,
		RequestedAt:    time.Now(),
	}

	if err := c.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// AcceptRequest contains the parameters for accepting a ride.
type AcceptRequest struct {
	BookingID string
	DriverID  string
	Caller    domain.Caller
}

// Accept moves the session to ACCEPTED and, in the same transaction,
// creates the active chat room and the PENDING ledger entry seeded
// from the driver's payment profile. Retrying with the same driver
// returns the current state; any other caller sees InvalidTransition.
func (c *Coordinator) Accept(ctx context.Context, req AcceptRequest) (*domain.RideSession, error) {
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}

	// Accept is the one transition issued before the session has a
	// driver, so the caller must be the accepting driver or an admin.
	if req.Caller.Role != domain.RoleAdmin &&
		(req.Caller.Role != domain.RoleDriver || req.Caller.ID != req.DriverID) {
		return nil, ErrUnauthorizedCaller
	}

	unlock, err := c.enterCriticalSection(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := c.sessionRepo.GetByBookingID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	// Idempotent retry: an identical accept returns the current state.
	if session.Phase == domain.PhaseAccepted {
		if session.DriverID == req.DriverID {
			return session, nil
		}
		return nil, ErrInvalidTransition
	}

	if !session.Phase.CanTransitionTo(domain.PhaseAccepted) {
		return nil, ErrInvalidTransition
	}

	driver, err := c.driverRepo.GetByID(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session.Phase = domain.PhaseAccepted
	session.DriverID = driver.ID
	session.AcceptedAt = now

	room := &domain.ChatRoom{
		BookingID: session.BookingID,
		StudentID: session.StudentID,
		DriverID:  driver.ID,
		IsActive:  true,
		CreatedAt: now,
	}

	entry := &domain.PaymentLedgerEntry{
		BookingID: session.BookingID,
		Method:    driver.PaymentMethod,
		Status:    domain.PaymentStatusPending,
		Fare:      session.Fare,
		CreatedAt: now,
	}

	err = c.tx.InTx(ctx, func(r repository.Repos) error {
		if err := r.Sessions.Update(ctx, session); err != nil {
			return err
		}

		if _, err := r.Rooms.GetByBookingID(ctx, session.BookingID); err == nil {
			return ErrDuplicateRoom
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := r.Rooms.Create(ctx, room); err != nil {
			return err
		}

		if _, err := r.Payments.GetByBookingID(ctx, session.BookingID); err == nil {
			return ErrDuplicateEntry
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return r.Payments.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	c.invalidateSessionCache(ctx, session.BookingID)

	if c.notificationService != nil {
		_ = c.notificationService.NotifyRideAccepted(ctx, session)
	}

	return session, nil
}

// TransitionRequest contains the parameters for start/complete.
type TransitionRequest struct {
	BookingID string
	Caller    domain.Caller
}

// Start moves the session to IN_PROGRESS and deactivates the chat room
// in the same transaction, so no message can land after the phase flip
// becomes visible.
func (c *Coordinator) Start(ctx context.Context, req TransitionRequest) (*domain.RideSession, error) {
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}

	unlock, err := c.enterCriticalSection(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := c.sessionRepo.GetByBookingID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if err := authorizeDriverAction(session, req.Caller); err != nil {
		return nil, err
	}

	if session.Phase == domain.PhaseInProgress {
		return session, nil
	}
	if !session.Phase.CanTransitionTo(domain.PhaseInProgress) {
		return nil, ErrInvalidTransition
	}

	session.Phase = domain.PhaseInProgress
	session.StartedAt = time.Now()

	err = c.tx.InTx(ctx, func(r repository.Repos) error {
		if err := r.Sessions.Update(ctx, session); err != nil {
			return err
		}
		return deactivateRoom(ctx, r, session.BookingID)
	})
	if err != nil {
		return nil, err
	}

	c.invalidateSessionCache(ctx, session.BookingID)

	if c.notificationService != nil {
		_ = c.notificationService.NotifyRideStarted(ctx, session)
	}

	return session, nil
}

// Complete moves the session to COMPLETED. It does not touch the
// ledger entry: completion only unlocks payment finalization.
func (c *Coordinator) Complete(ctx context.Context, req TransitionRequest) (*domain.RideSession, error) {
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}

	unlock, err := c.enterCriticalSection(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := c.sessionRepo.GetByBookingID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if err := authorizeDriverAction(session, req.Caller); err != nil {
		return nil, err
	}

	if session.Phase == domain.PhaseCompleted {
		return session, nil
	}
	if !session.Phase.CanTransitionTo(domain.PhaseCompleted) {
		return nil, ErrInvalidTransition
	}

	session.Phase = domain.PhaseCompleted
	session.CompletedAt = time.Now()

	err = c.tx.InTx(ctx, func(r repository.Repos) error {
		return r.Sessions.Update(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	c.invalidateSessionCache(ctx, session.BookingID)

	if c.notificationService != nil {
		_ = c.notificationService.NotifyRideCompleted(ctx, session)
	}

	return session, nil
}

// CancelRequest contains the parameters for cancelling a session.
type CancelRequest struct {
	BookingID string
	Caller    domain.Caller
	Reason    string
}

// Cancel moves the session to CANCELLED from any non-terminal phase.
// The chat room (if any) is deactivated and a still-PENDING ledger
// entry is voided, all in the same transaction.
func (c *Coordinator) Cancel(ctx context.Context, req CancelRequest) (*domain.RideSession, error) {
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}

	unlock, err := c.enterCriticalSection(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := c.sessionRepo.GetByBookingID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if err := authorizeParty(session, req.Caller); err != nil {
		return nil, err
	}

	if session.Phase == domain.PhaseCancelled {
		return session, nil
	}
	if !session.Phase.CanTransitionTo(domain.PhaseCancelled) {
		return nil, ErrInvalidTransition
	}

	session.Phase = domain.PhaseCancelled
	session.CancelledAt = time.Now()
	session.CancelReason = req.Reason

	var voided *domain.PaymentLedgerEntry

	err = c.tx.InTx(ctx, func(r repository.Repos) error {
		if err := r.Sessions.Update(ctx, session); err != nil {
			return err
		}

		// Sessions cancelled before acceptance have no room or entry.
		if err := deactivateRoom(ctx, r, session.BookingID); err != nil &&
			!errors.Is(err, repository.ErrNotFound) {
			return err
		}

		entry, err := r.Payments.GetByBookingID(ctx, session.BookingID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		}
		if entry.Status != domain.PaymentStatusPending {
			return nil
		}

		entry.Status = domain.PaymentStatusVoided
		if err := r.Payments.Update(ctx, entry); err != nil {
			return err
		}
		voided = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.invalidateSessionCache(ctx, session.BookingID)

	if c.notificationService != nil {
		_ = c.notificationService.NotifyRideCancelled(ctx, session, req.Caller.ID)
		if voided != nil {
			_ = c.notificationService.NotifyPaymentVoided(ctx, session, voided)
		}
	}

	return session, nil
}

// Session retrieves a session by booking ID, serving a cached summary
// when one is fresh.
func (c *Coordinator) Session(ctx context.Context, bookingID string) (*domain.RideSession, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	if c.cacheStore != nil {
		if cached, err := c.cacheStore.GetSession(ctx, bookingID); err == nil && cached != nil {
			return cachedToSession(cached), nil
		}
	}

	session, err := c.sessionRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	c.cacheSessionAsync(session)

	return session, nil
}

// SessionsByParticipant retrieves sessions where the given ID is the
// student or the driver ("my rides").
func (c *Coordinator) SessionsByParticipant(ctx context.Context, participantID string) ([]*domain.RideSession, error) {
	if participantID == "" {
		return nil, ErrInvalidStudentID
	}
	return c.sessionRepo.ListByParticipant(ctx, participantID)
}

// Sessions retrieves recent sessions for the admin read surface.
func (c *Coordinator) Sessions(ctx context.Context) ([]*domain.RideSession, error) {
	return c.sessionRepo.GetAll(ctx)
}

// enterCriticalSection takes the in-process booking lock and, when a
// lock store is configured, the distributed booking lock. Contention on
// the distributed lock surfaces as ErrSessionBusy, which is safe to
// retry blindly.
func (c *Coordinator) enterCriticalSection(ctx context.Context, bookingID string) (func(), error) {
	unlock := c.locks.Lock(bookingID)

	if c.lockStore == nil {
		return unlock, nil
	}

	locked, err := c.lockStore.AcquireBookingLock(ctx, bookingID, bookingLockTTL)
	if err != nil {
		unlock()
		return nil, err
	}
	if !locked {
		unlock()
		return nil, ErrSessionBusy
	}

	return func() {
		_ = c.lockStore.ReleaseBookingLock(ctx, bookingID)
		unlock()
	}, nil
}

// deactivateRoom flips the room inactive inside the caller's
// transaction. Idempotent: an already-inactive room is left alone.
func deactivateRoom(ctx context.Context, r repository.Repos, bookingID string) error {
	room, err := r.Rooms.GetByBookingID(ctx, bookingID)
	if err != nil {
		return err
	}
	if !room.IsActive {
		return nil
	}

	room.IsActive = false
	room.DeactivatedAt = time.Now()
	return r.Rooms.Update(ctx, room)
}

// authorizeParty permits the booking's student, its driver, or an
// admin.
func authorizeParty(session *domain.RideSession, caller domain.Caller) error {
	switch caller.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleStudent:
		if caller.ID == session.StudentID {
			return nil
		}
	case domain.RoleDriver:
		if session.DriverID != "" && caller.ID == session.DriverID {
			return nil
		}
	}
	return ErrUnauthorizedCaller
}

// authorizeDriverAction permits the assigned driver or an admin.
func authorizeDriverAction(session *domain.RideSession, caller domain.Caller) error {
	if caller.Role == domain.RoleAdmin {
		return nil
	}
	if caller.Role == domain.RoleDriver && session.DriverID != "" && caller.ID == session.DriverID {
		return nil
	}
	return ErrUnauthorizedCaller
}

func (c *Coordinator) invalidateSessionCache(ctx context.Context, bookingID string) {
	if c.cacheStore == nil {
		return
	}
	_ = c.cacheStore.InvalidateSession(ctx, bookingID)
}

// cacheSessionAsync caches a session summary (fire and forget).
func (c *Coordinator) cacheSessionAsync(session *domain.RideSession) {
	if c.cacheStore == nil {
		return
	}
	go func() {
		cached := &redis.CachedSession{
			BookingID:      session.BookingID,
			StudentID:      session.StudentID,
			DriverID:       session.DriverID,
			Phase:          string(session.Phase),
			Fare:           session.Fare,
			PickupLat:      session.PickupLat,
			PickupLng:      session.PickupLng,
			DestinationLat: session.DestinationLat,
			DestinationLng: session.DestinationLng,
		}
		_ = c.cacheStore.SetSession(context.Background(), cached)
	}()
}

// cachedToSession converts a cached summary to a domain session.
func cachedToSession(cached *redis.CachedSession) *domain.RideSession {
	return &domain.RideSession{
		BookingID:      cached.BookingID,
		StudentID:      cached.StudentID,
		DriverID:       cached.DriverID,
		Phase:          domain.Phase(cached.Phase),
		Fare:           cached.Fare,
		PickupLat:      cached.PickupLat,
		PickupLng:      cached.PickupLng,
		DestinationLat: cached.DestinationLat,
		DestinationLng: cached.DestinationLng,
	}
}
