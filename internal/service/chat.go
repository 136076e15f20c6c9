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

// ChatService owns the per-booking chat room and message log. All
// writes for one room go through the booking's critical section, which
// is the single linearization point the ordering guarantee relies on.
type ChatService struct {
	tx                  repository.TxRunner
	roomRepo            repository.ChatRoomRepository
	messageRepo         repository.MessageRepository
	locks               *BookingLocks
	presence            redis.PresenceStoreInterface
	notificationService *NotificationService
}

// NewChatService creates a new ChatService. presence and
// notificationService are optional.
func NewChatService(
	tx repository.TxRunner,
	roomRepo repository.ChatRoomRepository,
	messageRepo repository.MessageRepository,
	locks *BookingLocks,
	presence redis.PresenceStoreInterface,
	notificationService *NotificationService,
) *ChatService {
	return &ChatService{
		tx:                  tx,
		roomRepo:            roomRepo,
		messageRepo:         messageRepo,
		locks:               locks,
		presence:            presence,
		notificationService: notificationService,
	}
}

// SendMessageRequest contains the parameters for sending a message.
type SendMessageRequest struct {
	BookingID  string
	SenderType domain.SenderType
	SenderID   string
	Text       string
}

// SendMessage appends a message to the room's log. The timestamp is
// assigned server-side, strictly greater than the room's last, and the
// room's last-message summary is updated in the same transaction.
func (s *ChatService) SendMessage(ctx context.Context, req SendMessageRequest) (*domain.ChatMessage, error) {
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if req.Text == "" {
		return nil, ErrEmptyMessage
	}
	if req.SenderType != domain.SenderStudent && req.SenderType != domain.SenderDriver {
		return nil, ErrInvalidSenderType
	}
	if req.SenderID == "" {
		return nil, ErrUnauthorizedSender
	}

	unlock := s.locks.Lock(req.BookingID)
	defer unlock()

	room, err := s.roomRepo.GetByBookingID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomInactive
		}
		return nil, err
	}

	if !room.IsActive {
		return nil, ErrRoomInactive
	}

	if err := verifySender(room, req.SenderType, req.SenderID); err != nil {
		return nil, err
	}

	// Server-assigned timestamp; a clock stall or skewed client must
	// not be able to reorder the log.
	ts := time.Now()
	if !ts.After(room.LastMessageTime) {
		ts = room.LastMessageTime.Add(time.Microsecond)
	}

	msg := &domain.ChatMessage{
		ID:         uuid.New().String(),
		BookingID:  req.BookingID,
		SenderType: req.SenderType,
		SenderID:   req.SenderID,
		Text:       req.Text,
		Status:     domain.MessageStatusSent,
		SentAt:     ts,
	}

	room.LastMessage = req.Text
	room.LastMessageTime = ts

	err = s.tx.InTx(ctx, func(r repository.Repos) error {
		if err := r.Messages.Create(ctx, msg); err != nil {
			return err
		}
		return r.Rooms.Update(ctx, room)
	})
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyChatMessage(ctx, room, msg)
	}

	return msg, nil
}

// Messages retrieves a booking's message log in timestamp order. The
// log stays readable after the room is deactivated.
func (s *ChatService) Messages(ctx context.Context, bookingID string) ([]*domain.ChatMessage, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	// The room record outlives deactivation, so this doubles as the
	// unknown-booking check.
	if _, err := s.roomRepo.GetByBookingID(ctx, bookingID); err != nil {
		return nil, err
	}

	return s.messageRepo.ListByBookingID(ctx, bookingID)
}

// Room retrieves the chat room for a booking.
func (s *ChatService) Room(ctx context.Context, bookingID string) (*domain.ChatRoom, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	return s.roomRepo.GetByBookingID(ctx, bookingID)
}

// RoomsByParticipant retrieves rooms where the given ID is the student
// or the driver ("my chats").
func (s *ChatService) RoomsByParticipant(ctx context.Context, participantID string) ([]*domain.ChatRoom, error) {
	if participantID == "" {
		return nil, ErrInvalidStudentID
	}
	return s.roomRepo.ListByParticipant(ctx, participantID)
}

// MarkDelivered moves a SENT message to DELIVERED. Calling it on a
// DELIVERED or READ message is a no-op, not an error.
func (s *ChatService) MarkDelivered(ctx context.Context, messageID string) (*domain.ChatMessage, error) {
	return s.advanceStatus(ctx, messageID, domain.MessageStatusDelivered)
}

// MarkRead moves a message to READ. READ implies DELIVERED, so a SENT
// message moves to READ directly. Idempotent.
func (s *ChatService) MarkRead(ctx context.Context, messageID string) (*domain.ChatMessage, error) {
	return s.advanceStatus(ctx, messageID, domain.MessageStatusRead)
}

// Heartbeat refreshes the caller's presence mark for a room. The
// notification dispatcher uses presence to deliver in-app instead of
// pushing.
func (s *ChatService) Heartbeat(ctx context.Context, bookingID, userID string) error {
	if bookingID == "" {
		return ErrInvalidBookingID
	}

	room, err := s.roomRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return err
	}
	if userID != room.StudentID && userID != room.DriverID {
		return ErrUnauthorizedSender
	}

	if s.presence == nil {
		return nil
	}
	return s.presence.SetPresent(ctx, bookingID, userID, redis.DefaultPresenceTTL)
}

// advanceStatus applies a forward-only status transition under the
// room's critical section.
func (s *ChatService) advanceStatus(ctx context.Context, messageID string, target domain.MessageStatus) (*domain.ChatMessage, error) {
	if messageID == "" {
		return nil, ErrInvalidMessageID
	}

	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(msg.BookingID)
	defer unlock()

	// Re-read under the lock; a concurrent marker may have advanced it.
	msg, err = s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	// Forward-only: never step a message's status backwards.
	if !statusAdvances(msg.Status, target) {
		return msg, nil
	}

	if err := s.messageRepo.UpdateStatus(ctx, messageID, target); err != nil {
		return nil, err
	}
	msg.Status = target

	return msg, nil
}

// statusAdvances reports whether moving from current to target is a
// forward step in SENT -> DELIVERED -> READ.
func statusAdvances(current, target domain.MessageStatus) bool {
	rank := map[domain.MessageStatus]int{
		domain.MessageStatusSent:      0,
		domain.MessageStatusDelivered: 1,
		domain.MessageStatusRead:      2,
	}
	return rank[target] > rank[current]
}

func verifySender(room *domain.ChatRoom, senderType domain.SenderType, senderID string) error {
	switch senderType {
	case domain.SenderStudent:
		if senderID == room.StudentID {
			return nil
		}
	case domain.SenderDriver:
		if senderID == room.DriverID {
			return nil
		}
	}
	return ErrUnauthorizedSender
}
