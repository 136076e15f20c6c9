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
// 3. PAYMENT SETTLEMENT
// ──────────────────────────────────────────────

func TestConfirmUpi_BeforeCompletionIsPolicyViolation(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseInProgress)
	env.seedEntry("booking-1", domain.PaymentMethodUpi, domain.PaymentStatusPending)

	_, err := env.paymentService.ConfirmUpi(context.Background(), "booking-1", student("student-1"))
	if !errors.Is(err, service.ErrPolicyViolation) {
		t.Errorf("expected ErrPolicyViolation, got %v", err)
	}

	entry := env.paymentRepo.GetEntry("booking-1")
	if entry.Status != domain.PaymentStatusPending {
		t.Errorf("entry must stay PENDING, got %s", entry.Status)
	}
}

func TestConfirmUpi_AfterCompletionMarksPaid(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseCompleted)
	env.seedEntry("booking-1", domain.PaymentMethodUpi, domain.PaymentStatusPending)

	entry, err := env.paymentService.ConfirmUpi(context.Background(), "booking-1", student("student-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.Status != domain.PaymentStatusPaid {
		t.Errorf("expected status %s, got %s", domain.PaymentStatusPaid, entry.Status)
	}
	if entry.PaidAt.IsZero() {
		t.Error("expected PaidAt to be set")
	}
}

func TestConfirmCash_AfterCompletionMarksCollected(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseCompleted)
	env.seedEntry("booking-1", domain.PaymentMethodCashOnly, domain.PaymentStatusPending)

	entry, err := env.paymentService.ConfirmCash(context.Background(), "booking-1", driver("driver-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Status != domain.PaymentStatusCashCollected {
		t.Errorf("expected status %s, got %s", domain.PaymentStatusCashCollected, entry.Status)
	}
}

func TestConfirm_MethodMismatchIsRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseCompleted)
	env.seedEntry("booking-1", domain.PaymentMethodCashOnly, domain.PaymentStatusPending)
	env.seedSession("booking-2", "student-1", "driver-1", domain.PhaseCompleted)
	env.seedEntry("booking-2", domain.PaymentMethodUpi, domain.PaymentStatusPending)

	ctx := context.Background()
	if _, err := env.paymentService.ConfirmUpi(ctx, "booking-1", student("student-1")); !errors.Is(err, service.ErrMethodMismatch) {
		t.Errorf("UPI against CASH_ONLY: expected ErrMethodMismatch, got %v", err)
	}
	if _, err := env.paymentService.ConfirmCash(ctx, "booking-2", driver("driver-1")); !errors.Is(err, service.ErrMethodMismatch) {
		t.Errorf("cash against UPI: expected ErrMethodMismatch, got %v", err)
	}
}

func TestConfirmUpi_RetryConvergesWithoutSecondWrite(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseCompleted)
	env.seedEntry("booking-1", domain.PaymentMethodUpi, domain.PaymentStatusPending)

	ctx := context.Background()
	if _, err := env.paymentService.ConfirmUpi(ctx, "booking-1", student("student-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, err := env.paymentService.ConfirmUpi(ctx, "booking-1", student("student-1"))
	if err != nil {
		t.Fatalf("retry should succeed, got %v", err)
	}
	if entry.Status != domain.PaymentStatusPaid {
		t.Errorf("expected status %s, got %s", domain.PaymentStatusPaid, entry.Status)
	}
	if env.paymentRepo.UpdateCallCount != 1 {
		t.Errorf("retry must not write again, got %d updates", env.paymentRepo.UpdateCallCount)
	}
}

func TestConfirm_CrossChannelAfterFinalizationIsRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseCompleted)
	env.seedEntry("booking-1", domain.PaymentMethodCashAndUpi, domain.PaymentStatusPending)

	ctx := context.Background()
	if _, err := env.paymentService.ConfirmUpi(ctx, "booking-1", student("student-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := env.paymentService.ConfirmCash(ctx, "booking-1", driver("driver-1"))
	if !errors.Is(err, service.ErrAlreadyFinalized) {
		t.Errorf("expected ErrAlreadyFinalized, got %v", err)
	}
}

func TestConfirm_VoidedEntryIsRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseCancelled)
	env.seedEntry("booking-1", domain.PaymentMethodUpi, domain.PaymentStatusVoided)

	_, err := env.paymentService.ConfirmUpi(context.Background(), "booking-1", student("student-1"))
	if !errors.Is(err, service.ErrAlreadyFinalized) {
		t.Errorf("expected ErrAlreadyFinalized, got %v", err)
	}
}

func TestConfirm_ConcurrentChannelsFinalizeExactlyOnce(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseCompleted)
	env.seedEntry("booking-1", domain.PaymentMethodCashAndUpi, domain.PaymentStatusPending)

	ctx := context.Background()
	results := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, results[0] = env.paymentService.ConfirmUpi(ctx, "booking-1", student("student-1"))
	}()
	go func() {
		defer wg.Done()
		_, results[1] = env.paymentService.ConfirmCash(ctx, "booking-1", driver("driver-1"))
	}()
	wg.Wait()

	var wins, rejections int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, service.ErrAlreadyFinalized):
			rejections++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 || rejections != 1 {
		t.Errorf("expected exactly one finalization, got %d wins and %d rejections", wins, rejections)
	}
	if env.paymentRepo.UpdateCallCount != 1 {
		t.Errorf("expected 1 ledger write, got %d", env.paymentRepo.UpdateCallCount)
	}
}

func TestConfirm_AuthorizationPerChannel(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedSession("booking-1", "student-1", "driver-1", domain.PhaseCompleted)
	env.seedEntry("booking-1", domain.PaymentMethodCashAndUpi, domain.PaymentStatusPending)

	ctx := context.Background()

	// The driver does not confirm the student's UPI payment.
	if _, err := env.paymentService.ConfirmUpi(ctx, "booking-1", driver("driver-1")); !errors.Is(err, service.ErrUnauthorizedCaller) {
		t.Errorf("driver confirming UPI: expected ErrUnauthorizedCaller, got %v", err)
	}
	// The student does not confirm the driver's cash collection.
	if _, err := env.paymentService.ConfirmCash(ctx, "booking-1", student("student-1")); !errors.Is(err, service.ErrUnauthorizedCaller) {
		t.Errorf("student confirming cash: expected ErrUnauthorizedCaller, got %v", err)
	}
	// A stranger is rejected outright.
	if _, err := env.paymentService.ConfirmUpi(ctx, "booking-1", student("student-2")); !errors.Is(err, service.ErrUnauthorizedCaller) {
		t.Errorf("stranger: expected ErrUnauthorizedCaller, got %v", err)
	}

	// Admin may settle either channel.
	entry, err := env.paymentService.ConfirmCash(ctx, "booking-1", admin("admin-1"))
	if err != nil {
		t.Fatalf("admin settlement failed: %v", err)
	}
	if entry.Status != domain.PaymentStatusCashCollected {
		t.Errorf("expected status %s, got %s", domain.PaymentStatusCashCollected, entry.Status)
	}
}

func TestValidatePaymentMethod(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"CASH_ONLY", "UPI", "CASH_AND_UPI"} {
		if _, err := service.ValidatePaymentMethod(valid); err != nil {
			t.Errorf("%s should be valid, got %v", valid, err)
		}
	}
	if _, err := service.ValidatePaymentMethod("CARD"); !errors.Is(err, service.ErrInvalidPaymentMethod) {
		t.Errorf("expected ErrInvalidPaymentMethod, got %v", err)
	}
}

// Full happy path: request, accept, start, complete, settle.
func TestLifecycle_EndToEndCashRide(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedDriver("driver-1", domain.PaymentMethodCashOnly)

	ctx := context.Background()
	session, err := env.coordinator.RequestRide(ctx, service.RequestRideRequest{
		StudentID:      "student-1",
		PickupLat:      12.9716,
		PickupLng:      77.5946,
		DestinationLat: 12.9352,
		DestinationLng: 77.6245,
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	bookingID := session.BookingID
	if _, err := env.coordinator.Accept(ctx, service.AcceptRequest{
		BookingID: bookingID, DriverID: "driver-1", Caller: driver("driver-1"),
	}); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := env.chatService.SendMessage(ctx, service.SendMessageRequest{
		BookingID:  bookingID,
		SenderType: domain.SenderStudent,
		SenderID:   "student-1",
		Text:       "I am at the main gate",
	}); err != nil {
		t.Fatalf("send message: %v", err)
	}

	if _, err := env.coordinator.Start(ctx, service.TransitionRequest{
		BookingID: bookingID, Caller: driver("driver-1"),
	}); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := env.coordinator.Complete(ctx, service.TransitionRequest{
		BookingID: bookingID, Caller: driver("driver-1"),
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	entry, err := env.paymentService.ConfirmCash(ctx, bookingID, driver("driver-1"))
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if entry.Status != domain.PaymentStatusCashCollected {
		t.Errorf("expected status %s, got %s", domain.PaymentStatusCashCollected, entry.Status)
	}

	// The room is closed but the history survives.
	room := env.roomRepo.GetRoom(bookingID)
	if room.IsActive {
		t.Error("room must be inactive after the ride started")
	}
	messages, err := env.chatService.Messages(ctx, bookingID)
	if err != nil || len(messages) != 1 {
		t.Errorf("expected 1 surviving message, got %d (err %v)", len(messages), err)
	}
}
