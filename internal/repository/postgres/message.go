package postgres

import (
	"context"
	"database/sql"
	"errors"

	"campusride/internal/domain"
	"campusride/internal/repository"
)

// MessageRepository is a PostgreSQL implementation of repository.MessageRepository.
type MessageRepository struct {
	q Querier
}

// NewMessageRepository creates a new PostgreSQL message repository.
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{q: db}
}

// NewMessageRepositoryWithTx creates a message repository using a transaction.
func NewMessageRepositoryWithTx(tx *sql.Tx) *MessageRepository {
	return &MessageRepository{q: tx}
}

// Create appends a new message to the log.
func (r *MessageRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, booking_id, sender_type, sender_id, text, status, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		msg.ID,
		msg.BookingID,
		msg.SenderType,
		msg.SenderID,
		msg.Text,
		msg.Status,
		msg.SentAt,
	)

	return err
}

// GetByID retrieves a message by ID.
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*domain.ChatMessage, error) {
	query := `
		SELECT id, booking_id, sender_type, sender_id, text, status, sent_at
		FROM chat_messages WHERE id = $1
	`

	var msg domain.ChatMessage
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&msg.ID,
		&msg.BookingID,
		&msg.SenderType,
		&msg.SenderID,
		&msg.Text,
		&msg.Status,
		&msg.SentAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &msg, nil
}

// ListByBookingID retrieves a booking's messages in timestamp order,
// which equals insertion order.
func (r *MessageRepository) ListByBookingID(ctx context.Context, bookingID string) ([]*domain.ChatMessage, error) {
	query := `
		SELECT id, booking_id, sender_type, sender_id, text, status, sent_at
		FROM chat_messages WHERE booking_id = $1 ORDER BY sent_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.BookingID,
			&msg.SenderType,
			&msg.SenderID,
			&msg.Text,
			&msg.Status,
			&msg.SentAt,
		); err != nil {
			return nil, err
		}
		msgs = append(msgs, &msg)
	}

	return msgs, rows.Err()
}

// UpdateStatus updates a message's delivery status.
func (r *MessageRepository) UpdateStatus(ctx context.Context, id string, status domain.MessageStatus) error {
	query := `UPDATE chat_messages SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
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

// Ensure MessageRepository implements repository.MessageRepository.
var _ repository.MessageRepository = (*MessageRepository)(nil)
