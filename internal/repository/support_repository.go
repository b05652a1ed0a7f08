package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/SinaHo/investment-backend/internal/model"
)

type SupportRepository interface {
	CreateChat(ctx context.Context, c *model.SupportChat) error
	GetChat(ctx context.Context, id uuid.UUID) (*model.SupportChat, error)
	// ListChats lists the chats of one user, or every chat when userID is nil.
	ListChats(ctx context.Context, userID *uuid.UUID) ([]model.SupportChat, error)
	UpdateChat(ctx context.Context, c *model.SupportChat) error
	CreateMessage(ctx context.Context, m *model.SupportMessage) error
	ListMessages(ctx context.Context, chatID uuid.UUID) ([]model.SupportMessage, error)
	// MarkRead flags as read every message in the chat not sent by readerID.
	MarkRead(ctx context.Context, chatID, readerID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

type supportRepository struct {
	db sqlx.ExtContext
}

const (
	chatColumns    = `id, user_id, subject, status, priority, last_message_at, created_at, updated_at`
	messageColumns = `id, chat_id, sender_id, sender_type, message, is_read, created_at`
)

func (r *supportRepository) CreateChat(ctx context.Context, c *model.SupportChat) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt, c.LastMessageAt = now, now, now
	if c.Status == "" {
		c.Status = model.ChatOpen
	}
	if c.Priority == "" {
		c.Priority = "medium"
	}
	query := `
		INSERT INTO support_chats (` + chatColumns + `)
		VALUES (:id, :user_id, :subject, :status, :priority, :last_message_at, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, c); err != nil {
		return fmt.Errorf("error inserting support chat: %w", err)
	}
	return nil
}

func (r *supportRepository) GetChat(ctx context.Context, id uuid.UUID) (*model.SupportChat, error) {
	var c model.SupportChat
	if err := sqlx.GetContext(ctx, r.db, &c, `SELECT `+chatColumns+` FROM support_chats WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error selecting support chat: %w", err)
	}
	return &c, nil
}

func (r *supportRepository) ListChats(ctx context.Context, userID *uuid.UUID) ([]model.SupportChat, error) {
	out := []model.SupportChat{}
	base := `SELECT ` + chatColumns + ` FROM support_chats`
	var err error
	if userID != nil {
		err = sqlx.SelectContext(ctx, r.db, &out, base+` WHERE user_id = $1 ORDER BY last_message_at DESC`, *userID)
	} else {
		err = sqlx.SelectContext(ctx, r.db, &out, base+` ORDER BY last_message_at DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("error listing support chats: %w", err)
	}
	return out, nil
}

func (r *supportRepository) UpdateChat(ctx context.Context, c *model.SupportChat) error {
	c.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE support_chats SET status = :status, priority = :priority,
			last_message_at = :last_message_at, updated_at = :updated_at
		WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, c); err != nil {
		return fmt.Errorf("error updating support chat: %w", err)
	}
	return nil
}

func (r *supportRepository) CreateMessage(ctx context.Context, m *model.SupportMessage) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO support_messages (` + messageColumns + `)
		VALUES (:id, :chat_id, :sender_id, :sender_type, :message, :is_read, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, m); err != nil {
		return fmt.Errorf("error inserting support message: %w", err)
	}
	return nil
}

func (r *supportRepository) ListMessages(ctx context.Context, chatID uuid.UUID) ([]model.SupportMessage, error) {
	out := []model.SupportMessage{}
	query := `SELECT ` + messageColumns + ` FROM support_messages WHERE chat_id = $1 ORDER BY created_at ASC`
	if err := sqlx.SelectContext(ctx, r.db, &out, query, chatID); err != nil {
		return nil, fmt.Errorf("error listing support messages: %w", err)
	}
	return out, nil
}

func (r *supportRepository) MarkRead(ctx context.Context, chatID, readerID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE support_messages SET is_read = TRUE WHERE chat_id = $1 AND sender_id <> $2 AND NOT is_read`,
		chatID, readerID)
	if err != nil {
		return fmt.Errorf("error marking support messages read: %w", err)
	}
	return nil
}

// DeleteByUser removes the user's chats; messages go with them through the cascade.
func (r *supportRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM support_messages WHERE sender_id = $1`, userID); err != nil {
		return fmt.Errorf("error deleting support messages: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM support_chats WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("error deleting support chats: %w", err)
	}
	return nil
}

func (r *supportRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM support_messages`); err != nil {
		return fmt.Errorf("error deleting support messages: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM support_chats`); err != nil {
		return fmt.Errorf("error deleting support chats: %w", err)
	}
	return nil
}
