package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"campusride/internal/domain"
)

// ReceiptService generates settlement receipts when a ledger entry
// reaches a terminal paid status.
type ReceiptService struct {
	notificationService *NotificationService
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(notificationService *NotificationService) *ReceiptService {
	return &ReceiptService{
		notificationService: notificationService,
	}
}

// GenerateReceipt builds a receipt for a finalized payment.
func (s *ReceiptService) GenerateReceipt(ctx context.Context, session *domain.RideSession, entry *domain.PaymentLedgerEntry) (*domain.SettlementReceipt, error) {
	if session == nil || entry == nil {
		return nil, ErrInvalidBookingID
	}

	receipt := &domain.SettlementReceipt{
		ID:        uuid.New().String(),
		BookingID: entry.BookingID,
		StudentID: session.StudentID,
		DriverID:  session.DriverID,
		Fare:      entry.Fare,
		Method:    entry.Method,
		Status:    entry.Status,
		SettledAt: entry.PaidAt,
		CreatedAt: time.Now(),
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyReceiptReady(ctx, receipt)
	}

	return receipt, nil
}

// FormatReceipt formats the receipt as a string (for email/print).
func (s *ReceiptService) FormatReceipt(receipt *domain.SettlementReceipt) string {
	return `
=====================================
       RIDE SETTLEMENT RECEIPT
=====================================
Receipt ID: ` + receipt.ID + `
Booking ID: ` + receipt.BookingID + `
Date: ` + receipt.CreatedAt.Format("Jan 02, 2006 3:04 PM") + `

SETTLEMENT
-------------------------------------
Fare:       ₹` + fmt.Sprintf("%.2f", receipt.Fare) + `
Method:     ` + string(receipt.Method) + `
Status:     ` + string(receipt.Status) + `
Settled At: ` + receipt.SettledAt.Format("Jan 02, 2006 3:04 PM") + `

=====================================
    Thank you for riding with us!
=====================================
`
}
