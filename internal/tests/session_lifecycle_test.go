package tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"campusride/internal/domain"
	"campusride/internal/service"
)

// ──────────────────────────────────────────────
// 1. SESSION LIFECYCLE
// ──────────────────────────────────────────────

func TestRequestRide_CreatesRequestedSessionWithFare(t *testing.T) {
	t.Parallel()

	env := newTestEnv()

	session, err := env.coordinator.RequestRide(context.Background(), service.RequestRideRequest{
		StudentID:      "student-1",
		PickupLat:      12.9716,
		PickupLng:      77.5946,
		DestinationLat: 12.9352,
		DestinationLng: 77.6245,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.Phase != domain.PhaseRequested {
		t.Errorf("expected phase %s, got %s", domain.PhaseRequested, session.Phase)
	}
	if session.BookingID == "" {
		t.Error("expected a booking ID to be assigned")
	}
	if session.Fare <= 0 {
		t.Errorf("expected a positive fare, got %f", session.Fare)
	}
	if session.DriverID != "" {
		t.Error("requested session must not have a driver yet")
	}
}

func TestRequestRide_RejectsInvalidCoordinates(t *testing.T) {
	t.Parallel()

	env := newTestEnv()

	_, err := env.coordinator.RequestRide(context.Background(), service.RequestRideRequest{
		StudentID:      "student-1",
		PickupLat:      91.0,
		PickupLng:      77.5946,
		DestinationLat: 12.9352,
		DestinationLng: 77.6245,
	})
	if !errors.Is(err, service.ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}
}

func TestAccept_CreatesRoomAndPendingEntryTogether(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedDriver("driver-1", domain.PaymentMethodCashAndUpi)
	env.seedSession("booking-1", "student-1", "", domain.PhaseRequested)

	session, err := env.coordinator.Accept(context.Background(), service.AcceptRequest{
		BookingID: "booking-1",
		DriverID:  "driver-1",
		Caller:    driver("driver-1"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.Phase != domain.PhaseAccepted {
		t.Errorf("expected phase %s, got %s", domain.PhaseAccepted, session.Phase)
	}
	if session.DriverID != "driver-1" {
		t.Errorf("expected driver-1, got %s", session.DriverID)
	}

	room := env.roomRepo.GetRoom("booking-1")
	if room == nil {
		t.Fatal("chat room not created")
	}
	if !room.IsActive {
		t.Error("new chat room must be active")
	}

	entry := env.paymentRepo.GetEntry("booking-1")
	if entry == nil {
		t.Fatal("ledger entry not created")
	}
	if entry.Status != domain.PaymentStatusPending {
		t.Errorf("expected entry status %s, got %s", domain.PaymentStatusPending, entry.Status)
	}
	if entry.Method != domain.PaymentMethodCashAndUpi {
		t.Errorf("expected method from driver profile, got %s", entry.Method)
	}
	if entry.Fare != session.Fare {
		t.Errorf("entry fare %f does not match session fare %f", entry.Fare, session.Fare)
	}

	// Session update, room create and entry create share one transaction.
	if env.txRunner.InTxCallCount != 1 {
		t.Errorf("expected 1 transaction, got %d", env.txRunner.InTxCallCount)
	}
}

func TestAccept_SameDriverRetryIsIdempotent(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedDriver("driver-1", domain.PaymentMethodUpi)
	env.seedSession("booking-1", "student-1", "", domain.PhaseRequested)

	ctx := context.Background()
	first, err := env.coordinator.Accept(ctx, service.AcceptRequest{
		BookingID: "booking-1", DriverID: "driver-1", Caller: driver("driver-1"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := env.coordinator.Accept(ctx, service.AcceptRequest{
		BookingID: "booking-1", DriverID: "driver-1", Caller: driver("driver-1"),
	})
	if err != nil {
		t.Fatalf("retry should succeed, got %v", err)
	}

	if second.Phase != first.Phase || second.DriverID != first.DriverID {
		t.Error("retry must return the same state")
	}
	// The retry must not create a second room or entry.
	if env.roomRepo.CreateCallCount != 1 {
		t.Errorf("expected 1 room create, got %d", env.roomRepo.CreateCallCount)
	}
	if env.paymentRepo.CreateCallCount != 1 {
		t.Errorf("expected 1 entry create, got %d", env.paymentRepo.CreateCallCount)
	}
}

func TestAccept_SecondDriverIsRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedDriver("driver-1", domain.PaymentMethodUpi)
	env.seedDriver("driver-2", domain.PaymentMethodCashOnly)
	env.seedSession("booking-1", "student-1", "", domain.PhaseRequested)

	ctx := context.Background()
	if _, err := env.coordinator.Accept(ctx, service.AcceptRequest{
		BookingID: "booking-1", DriverID: "driver-1", Caller: driver("driver-1"),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := env.coordinator.Accept(ctx, service.AcceptRequest{
		BookingID: "booking-1", DriverID: "driver-2", Caller: driver("driver-2"),
	})
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	// The winning driver's assignment stands.
	stored := env.sessionRepo.GetSession("booking-1")
	if stored.DriverID != "driver-1" {
		t.Errorf("expected driver-1 to keep the booking, got %s", stored.DriverID)
	}
}

func TestAccept_ConcurrentDriversOnlyOneWins(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedDriver("driver-1", domain.PaymentMethodUpi)
	env.seedDriver("driver-2", domain.PaymentMethodUpi)
	env.seedSession("booking-1", "student-1", "", domain.PhaseRequested)

	ctx := context.Background()
	results := make([]error, 2)
	var wg sync.WaitGroup
	for i, id := range []string{"driver-1", "driver-2"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, results[i] = env.coordinator.Accept(ctx, service.AcceptRequest{
				BookingID: "booking-1", DriverID: id, Caller: driver(id),
			})
		}(i, id)
	}
	wg.Wait()

	var wins, rejections int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, service.ErrInvalidTransition):
			rejections++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 || rejections != 1 {
		t.Errorf("expected exactly one winner, got %d wins and %d rejections", wins, rejections)
	}
	if env.roomRepo.CreateCallCount != 1 {
		t.Errorf("expected 1 room create, got %d", env.roomRepo.CreateCallCount)
	}
}

func TestAccept_CallerMustBeAcceptingDriverOrAdmin(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedDriver("driver-1", domain.PaymentMethodUpi)
	env.seedSession("booking-1", "student-1", "", domain.PhaseRequested)

	ctx := context.Background()
	_, err := env.coordinator.Accept(ctx, service.AcceptRequest{
		BookingID: "booking-1", DriverID: "driver-1", Caller: student("student-1"),
	})
	if !errors.Is(err, service.ErrUnauthorizedCaller) {
		t.Errorf("expected ErrUnauthorizedCaller for student caller, got %v", err)
	}

	if _, err := env.coordinator.Accept(ctx, service.AcceptRequest{
		BookingID: "booking-1", DriverID: "driver-1", Caller: admin("admin-1"),
	}); err != nil {
		t.Errorf("admin should be able to accept on a driver's behalf, got %v", err)
	}
}

func TestStart_DeactivatesRoomInSameTransaction(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseAccepted)
	env.seedRoom("booking-1", "student-1", "driver-1", true)

	session, err := env.coordinator.Start(context.Background(), service.TransitionRequest{
		BookingID: "booking-1",
		Caller:    driver("driver-1"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.Phase != domain.PhaseInProgress {
		t.Errorf("expected phase %s, got %s", domain.PhaseInProgress, session.Phase)
	}

	room := env.roomRepo.GetRoom("booking-1")
	if room.IsActive {
		t.Error("room must be inactive once the ride starts")
	}
	if room.DeactivatedAt.IsZero() {
		t.Error("expected DeactivatedAt to be set")
	}
	if env.txRunner.InTxCallCount != 1 {
		t.Errorf("expected 1 transaction, got %d", env.txRunner.InTxCallCount)
	}
}

func TestStart_FromRequestedIsRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "", domain.PhaseRequested)

	_, err := env.coordinator.Start(context.Background(), service.TransitionRequest{
		BookingID: "booking-1",
		Caller:    admin("admin-1"),
	})
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestStart_StudentCannotStart(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseAccepted)
	env.seedRoom("booking-1", "student-1", "driver-1", true)

	_, err := env.coordinator.Start(context.Background(), service.TransitionRequest{
		BookingID: "booking-1",
		Caller:    student("student-1"),
	})
	if !errors.Is(err, service.ErrUnauthorizedCaller) {
		t.Errorf("expected ErrUnauthorizedCaller, got %v", err)
	}
}

func TestStart_RetryIsIdempotent(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseAccepted)
	env.seedRoom("booking-1", "student-1", "driver-1", true)

	ctx := context.Background()
	req := service.TransitionRequest{BookingID: "booking-1", Caller: driver("driver-1")}

	if _, err := env.coordinator.Start(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	session, err := env.coordinator.Start(ctx, req)
	if err != nil {
		t.Fatalf("retry should succeed, got %v", err)
	}
	if session.Phase != domain.PhaseInProgress {
		t.Errorf("expected phase %s, got %s", domain.PhaseInProgress, session.Phase)
	}
	if env.txRunner.InTxCallCount != 1 {
		t.Errorf("retry must not write again, got %d transactions", env.txRunner.InTxCallCount)
	}
}

func TestComplete_OnlyFromInProgress(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseAccepted)

	ctx := context.Background()
	_, err := env.coordinator.Complete(ctx, service.TransitionRequest{
		BookingID: "booking-1",
		Caller:    driver("driver-1"),
	})
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition from ACCEPTED, got %v", err)
	}

	env.seedSession("booking-2", "student-1", "driver-1", domain.PhaseInProgress)
	session, err := env.coordinator.Complete(ctx, service.TransitionRequest{
		BookingID: "booking-2",
		Caller:    driver("driver-1"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Phase != domain.PhaseCompleted {
		t.Errorf("expected phase %s, got %s", domain.PhaseCompleted, session.Phase)
	}
	if session.CompletedAt.IsZero() {
		t.Error("expected CompletedAt to be set")
	}
}

func TestCancel_BeforeAcceptHasNoRoomOrEntry(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "", domain.PhaseRequested)

	session, err := env.coordinator.Cancel(context.Background(), service.CancelRequest{
		BookingID: "booking-1",
		Caller:    student("student-1"),
		Reason:    "found another ride",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.Phase != domain.PhaseCancelled {
		t.Errorf("expected phase %s, got %s", domain.PhaseCancelled, session.Phase)
	}
	if session.CancelReason != "found another ride" {
		t.Errorf("expected cancel reason to be stored, got %q", session.CancelReason)
	}
}

func TestCancel_AfterAcceptVoidsEntryAndClosesRoom(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseAccepted)
	env.seedRoom("booking-1", "student-1", "driver-1", true)
	env.seedEntry("booking-1", domain.PaymentMethodUpi, domain.PaymentStatusPending)

	session, err := env.coordinator.Cancel(context.Background(), service.CancelRequest{
		BookingID: "booking-1",
		Caller:    driver("driver-1"),
		Reason:    "vehicle breakdown",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Phase != domain.PhaseCancelled {
		t.Errorf("expected phase %s, got %s", domain.PhaseCancelled, session.Phase)
	}

	room := env.roomRepo.GetRoom("booking-1")
	if room.IsActive {
		t.Error("room must be inactive after cancellation")
	}

	entry := env.paymentRepo.GetEntry("booking-1")
	if entry.Status != domain.PaymentStatusVoided {
		t.Errorf("expected entry status %s, got %s", domain.PaymentStatusVoided, entry.Status)
	}
	if env.txRunner.InTxCallCount != 1 {
		t.Errorf("expected 1 transaction, got %d", env.txRunner.InTxCallCount)
	}
}

func TestCancel_DoesNotTouchSettledEntry(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseInProgress)
	env.seedRoom("booking-1", "student-1", "driver-1", false)
	env.seedEntry("booking-1", domain.PaymentMethodUpi, domain.PaymentStatusPaid)

	if _, err := env.coordinator.Cancel(context.Background(), service.CancelRequest{
		BookingID: "booking-1",
		Caller:    admin("admin-1"),
		Reason:    "dispute",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry := env.paymentRepo.GetEntry("booking-1")
	if entry.Status != domain.PaymentStatusPaid {
		t.Errorf("settled entry must not be voided, got %s", entry.Status)
	}
}

func TestCancel_CompletedSessionIsRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseCompleted)

	_, err := env.coordinator.Cancel(context.Background(), service.CancelRequest{
		BookingID: "booking-1",
		Caller:    student("student-1"),
	})
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCancel_StrangerIsRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseAccepted)

	_, err := env.coordinator.Cancel(context.Background(), service.CancelRequest{
		BookingID: "booking-1",
		Caller:    student("student-2"),
	})
	if !errors.Is(err, service.ErrUnauthorizedCaller) {
		t.Errorf("expected ErrUnauthorizedCaller, got %v", err)
	}
}

func TestTransition_BusyDistributedLockSurfacesAsSessionBusy(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseAccepted)
	env.lockStore.HoldLock("booking-1")

	_, err := env.coordinator.Start(context.Background(), service.TransitionRequest{
		BookingID: "booking-1",
		Caller:    driver("driver-1"),
	})
	if !errors.Is(err, service.ErrSessionBusy) {
		t.Errorf("expected ErrSessionBusy, got %v", err)
	}
}

func TestSession_UnknownBookingReturnsNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv()

	_, err := env.coordinator.Session(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected an error for unknown booking")
	}
}

func TestSessionsByParticipant_FiltersByStudentAndDriver(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseAccepted)
	env.seedSession("booking-2", "student-2", "driver-1", domain.PhaseCompleted)
	env.seedSession("booking-3", "student-1", "", domain.PhaseRequested)

	ctx := context.Background()
	byStudent, err := env.coordinator.SessionsByParticipant(ctx, "student-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byStudent) != 2 {
		t.Errorf("expected 2 sessions for student-1, got %d", len(byStudent))
	}

	byDriver, err := env.coordinator.SessionsByParticipant(ctx, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byDriver) != 2 {
		t.Errorf("expected 2 sessions for driver-1, got %d", len(byDriver))
	}
}
