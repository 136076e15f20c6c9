package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"campusride/internal/domain"
	"campusride/internal/redis"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationRideAccepted   NotificationType = "RIDE_ACCEPTED"
	NotificationRideStarted    NotificationType = "RIDE_STARTED"
	NotificationRideCompleted  NotificationType = "RIDE_COMPLETED"
	NotificationRideCancelled  NotificationType = "RIDE_CANCELLED"
	NotificationChatMessage    NotificationType = "CHAT_MESSAGE"
	NotificationPaymentSettled NotificationType = "PAYMENT_SETTLED"
	NotificationPaymentVoided  NotificationType = "PAYMENT_VOIDED"
	NotificationReceiptReady   NotificationType = "RECEIPT_READY"
)

// Notification represents a notification to be dispatched.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService emits fire-and-forget events to the external
// push/SMS dispatcher. Delivery failure never rolls back the state
// change that triggered the event, so every send error is swallowed
// by callers.
type NotificationService struct {
	presence redis.PresenceStoreInterface
}

// NewNotificationService creates a new NotificationService. presence
// may be nil, in which case every chat notification is pushed.
func NewNotificationService(presence redis.PresenceStoreInterface) *NotificationService {
	return &NotificationService{presence: presence}
}

// NotifyRideAccepted notifies the student that a driver accepted.
func (s *NotificationService) NotifyRideAccepted(ctx context.Context, session *domain.RideSession) error {
	return s.send(ctx, Notification{
		Type:        NotificationRideAccepted,
		RecipientID: session.StudentID,
		Title:       "Driver Found",
		Message:     "A driver has accepted your ride. You can chat until the ride starts.",
		Data: map[string]interface{}{
			"booking_id": session.BookingID,
			"driver_id":  session.DriverID,
			"fare":       session.Fare,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyRideStarted notifies the student that the ride started.
func (s *NotificationService) NotifyRideStarted(ctx context.Context, session *domain.RideSession) error {
	return s.send(ctx, Notification{
		Type:        NotificationRideStarted,
		RecipientID: session.StudentID,
		Title:       "Ride Started",
		Message:     "Your ride has started. Chat is now closed.",
		Data: map[string]interface{}{
			"booking_id": session.BookingID,
			"started_at": session.StartedAt,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyRideCompleted notifies both parties that the ride completed
// and payment can be settled.
func (s *NotificationService) NotifyRideCompleted(ctx context.Context, session *domain.RideSession) error {
	for _, recipient := range []string{session.StudentID, session.DriverID} {
		if recipient == "" {
			continue
		}
		_ = s.send(ctx, Notification{
			Type:        NotificationRideCompleted,
			RecipientID: recipient,
			Title:       "Ride Completed",
			Message:     fmt.Sprintf("Ride completed. Fare to settle: ₹%.2f", session.Fare),
			Data: map[string]interface{}{
				"booking_id":   session.BookingID,
				"fare":         session.Fare,
				"completed_at": session.CompletedAt,
			},
			CreatedAt: time.Now(),
		})
	}
	return nil
}

// NotifyRideCancelled notifies the party that did not cancel.
func (s *NotificationService) NotifyRideCancelled(ctx context.Context, session *domain.RideSession, cancelledBy string) error {
	var recipientID string
	var message string

	if cancelledBy == session.StudentID {
		recipientID = session.DriverID
		message = "The student has cancelled the ride"
	} else {
		recipientID = session.StudentID
		message = "The ride has been cancelled"
	}

	if recipientID == "" {
		return nil // No one to notify
	}

	return s.send(ctx, Notification{
		Type:        NotificationRideCancelled,
		RecipientID: recipientID,
		Title:       "Ride Cancelled",
		Message:     message,
		Data: map[string]interface{}{
			"booking_id":   session.BookingID,
			"cancelled_by": cancelledBy,
			"reason":       session.CancelReason,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyChatMessage notifies the other room participant of a new
// message. When the recipient is present in the room the event is
// flagged in-app so the dispatcher skips the push channel.
func (s *NotificationService) NotifyChatMessage(ctx context.Context, room *domain.ChatRoom, msg *domain.ChatMessage) error {
	recipientID := room.StudentID
	if msg.SenderType == domain.SenderStudent {
		recipientID = room.DriverID
	}

	inApp := false
	if s.presence != nil {
		present, err := s.presence.IsPresent(ctx, room.BookingID, recipientID)
		if err == nil {
			inApp = present
		}
	}

	return s.send(ctx, Notification{
		Type:        NotificationChatMessage,
		RecipientID: recipientID,
		Title:       "New Message",
		Message:     msg.Text,
		Data: map[string]interface{}{
			"booking_id": room.BookingID,
			"message_id": msg.ID,
			"in_app":     inApp,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyPaymentSettled notifies both parties of a settled payment.
func (s *NotificationService) NotifyPaymentSettled(ctx context.Context, session *domain.RideSession, entry *domain.PaymentLedgerEntry) error {
	for _, recipient := range []string{session.StudentID, session.DriverID} {
		if recipient == "" {
			continue
		}
		_ = s.send(ctx, Notification{
			Type:        NotificationPaymentSettled,
			RecipientID: recipient,
			Title:       "Payment Settled",
			Message:     fmt.Sprintf("Payment of ₹%.2f settled (%s)", entry.Fare, entry.Status),
			Data: map[string]interface{}{
				"booking_id": entry.BookingID,
				"fare":       entry.Fare,
				"status":     string(entry.Status),
			},
			CreatedAt: time.Now(),
		})
	}
	return nil
}

// NotifyPaymentVoided notifies the driver that a pending payment was
// voided by cancellation.
func (s *NotificationService) NotifyPaymentVoided(ctx context.Context, session *domain.RideSession, entry *domain.PaymentLedgerEntry) error {
	if session.DriverID == "" {
		return nil
	}
	return s.send(ctx, Notification{
		Type:        NotificationPaymentVoided,
		RecipientID: session.DriverID,
		Title:       "Payment Voided",
		Message:     "The booking was cancelled; its pending payment is void.",
		Data: map[string]interface{}{
			"booking_id": entry.BookingID,
			"fare":       entry.Fare,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyReceiptReady notifies the student that the settlement receipt
// is ready.
func (s *NotificationService) NotifyReceiptReady(ctx context.Context, receipt *domain.SettlementReceipt) error {
	return s.send(ctx, Notification{
		Type:        NotificationReceiptReady,
		RecipientID: receipt.StudentID,
		Title:       "Receipt Ready",
		Message:     fmt.Sprintf("Your receipt for ₹%.2f is ready", receipt.Fare),
		Data: map[string]interface{}{
			"receipt_id": receipt.ID,
			"booking_id": receipt.BookingID,
			"fare":       receipt.Fare,
		},
		CreatedAt: time.Now(),
	})
}

// send hands a notification to the external dispatcher (mocked as a
// log line here; the real dispatcher is push/SMS).
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Title, notification.Message)

	return nil
}
