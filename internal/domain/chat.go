package domain

import "time"

// SenderType identifies which room participant authored a message.
type SenderType string

const (
	SenderStudent SenderType = "STUDENT"
	SenderDriver  SenderType = "DRIVER"
)

// MessageStatus represents the delivery status of a chat message.
// Transitions are forward-only: SENT -> DELIVERED -> READ. READ
// implies DELIVERED, so marking a SENT message read moves it to READ
// directly.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "SENT"
	MessageStatusDelivered MessageStatus = "DELIVERED"
	MessageStatusRead      MessageStatus = "READ"
)

// ChatRoom is the chat channel scoped to one booking. Participants are
// immutable once the room is created. The room is deactivated when the
// ride starts or is cancelled and is retained read-only afterward.
type ChatRoom struct {
	BookingID       string
	StudentID       string
	DriverID        string
	IsActive        bool
	LastMessage     string    // denormalized from the most recent message
	LastMessageTime time.Time // updated atomically with each accepted write
	CreatedAt       time.Time
	DeactivatedAt   time.Time
}

// ChatMessage is one entry in a room's append-only message log.
// SentAt values within a room are strictly increasing in insertion
// order and serve as the ordering key for reads.
type ChatMessage struct {
	ID         string
	BookingID  string
	SenderType SenderType
	SenderID   string
	Text       string
	Status     MessageStatus
	SentAt     time.Time
}
