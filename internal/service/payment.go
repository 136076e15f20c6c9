package service

import (
	"context"
	"time"

	"campusride/internal/domain"
	"campusride/internal/repository"
)

// PaymentService finalizes a booking's ledger entry once the ride is
// complete. An entry finalizes exactly once; retries of the same
// confirmation converge on the finalized entry.
type PaymentService struct {
	paymentRepo         repository.PaymentRepository
	sessionRepo         repository.SessionRepository
	locks               *BookingLocks
	notificationService *NotificationService
	receiptService      *ReceiptService
}

// NewPaymentService creates a new PaymentService. notificationService
// and receiptService are optional.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	sessionRepo repository.SessionRepository,
	locks *BookingLocks,
	notificationService *NotificationService,
	receiptService *ReceiptService,
) *PaymentService {
	return &PaymentService{
		paymentRepo:         paymentRepo,
		sessionRepo:         sessionRepo,
		locks:               locks,
		notificationService: notificationService,
		receiptService:      receiptService,
	}
}

// ConfirmUpi marks the booking's entry PAID after a UPI payment.
func (s *PaymentService) ConfirmUpi(ctx context.Context, bookingID string, caller domain.Caller) (*domain.PaymentLedgerEntry, error) {
	return s.finalize(ctx, bookingID, caller, domain.PaymentStatusPaid)
}

// ConfirmCash marks the booking's entry CASH_COLLECTED after the
// driver collects cash.
func (s *PaymentService) ConfirmCash(ctx context.Context, bookingID string, caller domain.Caller) (*domain.PaymentLedgerEntry, error) {
	return s.finalize(ctx, bookingID, caller, domain.PaymentStatusCashCollected)
}

// Entry retrieves the ledger entry for a booking.
func (s *PaymentService) Entry(ctx context.Context, bookingID string) (*domain.PaymentLedgerEntry, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	return s.paymentRepo.GetByBookingID(ctx, bookingID)
}

func (s *PaymentService) finalize(ctx context.Context, bookingID string, caller domain.Caller, target domain.PaymentStatus) (*domain.PaymentLedgerEntry, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	unlock := s.locks.Lock(bookingID)
	defer unlock()

	entry, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Finality first: a retry of the same confirmation returns the
	// entry as-is, any other finalization attempt is rejected.
	if entry.Status.Final() {
		if entry.Status == target {
			return entry, nil
		}
		return nil, ErrAlreadyFinalized
	}

	if err := methodAllows(entry.Method, target); err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := authorizeSettlement(session, caller, target); err != nil {
		return nil, err
	}

	// Settlement is gated on ride completion.
	if session.Phase != domain.PhaseCompleted {
		return nil, ErrPolicyViolation
	}

	entry.Status = target
	entry.PaidAt = time.Now()
	if err := s.paymentRepo.Update(ctx, entry); err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyPaymentSettled(ctx, session, entry)
	}
	if s.receiptService != nil {
		if _, err := s.receiptService.GenerateReceipt(ctx, session, entry); err != nil {
			return nil, err
		}
	}

	return entry, nil
}

// ValidatePaymentMethod parses a payment method string.
func ValidatePaymentMethod(s string) (domain.PaymentMethod, error) {
	switch method := domain.PaymentMethod(s); method {
	case domain.PaymentMethodCashOnly, domain.PaymentMethodUpi, domain.PaymentMethodCashAndUpi:
		return method, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// methodAllows checks the entry's payment method against the
// settlement channel being confirmed.
func methodAllows(method domain.PaymentMethod, target domain.PaymentStatus) error {
	switch target {
	case domain.PaymentStatusPaid:
		if !method.SupportsUpi() {
			return ErrMethodMismatch
		}
	case domain.PaymentStatusCashCollected:
		if !method.SupportsCash() {
			return ErrMethodMismatch
		}
	}
	return nil
}

// authorizeSettlement restricts who may confirm each channel: the
// student (payer) or admin for UPI, the driver (collector) or admin
// for cash.
func authorizeSettlement(session *domain.RideSession, caller domain.Caller, target domain.PaymentStatus) error {
	if caller.Role == domain.RoleAdmin {
		return nil
	}
	switch target {
	case domain.PaymentStatusPaid:
		if caller.Role == domain.RoleStudent && caller.ID == session.StudentID {
			return nil
		}
	case domain.PaymentStatusCashCollected:
		if caller.Role == domain.RoleDriver && caller.ID == session.DriverID {
			return nil
		}
	}
	return ErrUnauthorizedCaller
}
