package repository

import (
	"context"
	"database/sql"

	"github.com/memberboard/memberboard-go/internal/model"
)

// MessageRepository handles message persistence operations.
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message and sets the generated ID and creation
// time on the message struct. Messages are immutable after this point.
func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	query := `INSERT INTO messages (title, body, author_id) VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, msg.Title, msg.Body, msg.AuthorID)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	msg.ID = id

	return r.db.QueryRowContext(ctx, `SELECT created_at FROM messages WHERE id = ?`, id).Scan(&msg.CreatedAt)
}

// ListNewestFirst returns all messages ordered most recent first, each
// annotated with its author's display name via a join. Authors are never
// deleted, so an inner join is safe.
func (r *MessageRepository) ListNewestFirst(ctx context.Context) ([]model.Message, error) {
	query := `SELECT m.id, m.title, m.body, m.created_at, m.author_id, u.name
	          FROM messages m
	          JOIN users u ON u.id = m.author_id
	          ORDER BY m.created_at DESC, m.id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.ID, &msg.Title, &msg.Body, &msg.CreatedAt, &msg.AuthorID, &msg.AuthorName); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
