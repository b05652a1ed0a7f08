package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatStatus string

const (
	ChatOpen       ChatStatus = "open"
	ChatInProgress ChatStatus = "in_progress"
	ChatClosed     ChatStatus = "closed"
)

func (s ChatStatus) Valid() bool {
	switch s {
	case ChatOpen, ChatInProgress, ChatClosed:
		return true
	}
	return false
}

type SupportChat struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        uuid.UUID  `db:"user_id" json:"userId"`
	Subject       string     `db:"subject" json:"subject"`
	Status        ChatStatus `db:"status" json:"status"`
	Priority      string     `db:"priority" json:"priority"`
	LastMessageAt time.Time  `db:"last_message_at" json:"lastMessageAt"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

type SenderType string

const (
	SenderUser  SenderType = "user"
	SenderAdmin SenderType = "admin"
)

type SupportMessage struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	ChatID     uuid.UUID  `db:"chat_id" json:"chatId"`
	SenderID   uuid.UUID  `db:"sender_id" json:"senderId"`
	SenderType SenderType `db:"sender_type" json:"senderType"`
	Message    string     `db:"message" json:"message"`
	IsRead     bool       `db:"is_read" json:"isRead"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}
