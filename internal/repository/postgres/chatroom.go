package postgres

import (
	"context"
	"database/sql"
	"errors"

	"campusride/internal/domain"
	"campusride/internal/repository"
)

// ChatRoomRepository is a PostgreSQL implementation of repository.ChatRoomRepository.
type ChatRoomRepository struct {
	q Querier
}

// NewChatRoomRepository creates a new PostgreSQL chat room repository.
func NewChatRoomRepository(db *sql.DB) *ChatRoomRepository {
	return &ChatRoomRepository{q: db}
}

// NewChatRoomRepositoryWithTx creates a chat room repository using a transaction.
func NewChatRoomRepositoryWithTx(tx *sql.Tx) *ChatRoomRepository {
	return &ChatRoomRepository{q: tx}
}

const roomColumns = `booking_id, student_id, driver_id, is_active,
		last_message, last_message_time, created_at, deactivated_at`

// Create persists a new chat room.
func (r *ChatRoomRepository) Create(ctx context.Context, room *domain.ChatRoom) error {
	query := `
		INSERT INTO chat_rooms (` + roomColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		room.BookingID,
		room.StudentID,
		room.DriverID,
		room.IsActive,
		room.LastMessage,
		nullTime(room.LastMessageTime),
		room.CreatedAt,
		nullTime(room.DeactivatedAt),
	)

	return err
}

// GetByBookingID retrieves the room for a booking.
func (r *ChatRoomRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.ChatRoom, error) {
	query := `SELECT ` + roomColumns + ` FROM chat_rooms WHERE booking_id = $1`

	room, err := scanRoom(r.q.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return room, nil
}

// ListByParticipant retrieves rooms where the given ID is the student
// or the driver.
func (r *ChatRoomRepository) ListByParticipant(ctx context.Context, participantID string) ([]*domain.ChatRoom, error) {
	query := `
		SELECT ` + roomColumns + ` FROM chat_rooms
		WHERE student_id = $1 OR driver_id = $1
		ORDER BY created_at DESC LIMIT 100
	`

	rows, err := r.q.QueryContext(ctx, query, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*domain.ChatRoom
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

// Update updates an existing room.
func (r *ChatRoomRepository) Update(ctx context.Context, room *domain.ChatRoom) error {
	query := `
		UPDATE chat_rooms
		SET is_active = $1, last_message = $2, last_message_time = $3, deactivated_at = $4
		WHERE booking_id = $5
	`

	result, err := r.q.ExecContext(ctx, query,
		room.IsActive,
		room.LastMessage,
		nullTime(room.LastMessageTime),
		nullTime(room.DeactivatedAt),
		room.BookingID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanRoom(s scanner) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	var lastMessageTime, deactivatedAt sql.NullTime

	err := s.Scan(
		&room.BookingID,
		&room.StudentID,
		&room.DriverID,
		&room.IsActive,
		&room.LastMessage,
		&lastMessageTime,
		&room.CreatedAt,
		&deactivatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastMessageTime.Valid {
		room.LastMessageTime = lastMessageTime.Time
	}
	if deactivatedAt.Valid {
		room.DeactivatedAt = deactivatedAt.Time
	}

	return &room, nil
}

// Ensure ChatRoomRepository implements repository.ChatRoomRepository.
var _ repository.ChatRoomRepository = (*ChatRoomRepository)(nil)
