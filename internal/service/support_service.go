package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SinaHo/investment-backend/internal/apperr"
	"github.com/SinaHo/investment-backend/internal/model"
	"github.com/SinaHo/investment-backend/internal/repository"
)

type ChatThread struct {
	Chat     *model.SupportChat     `json:"chat"`
	Messages []model.SupportMessage `json:"messages"`
}

type SupportService interface {
	CreateChat(ctx context.Context, userID uuid.UUID, subject string) (*model.SupportChat, error)
	ListChats(ctx context.Context, userID uuid.UUID) ([]model.SupportChat, error)
	ListAllChats(ctx context.Context) ([]model.SupportChat, error)
	// OpenChat returns the chat with its messages and marks the other
	// party's messages read. Only the owner or an admin may open it.
	OpenChat(ctx context.Context, actor *model.User, chatID uuid.UUID) (*ChatThread, error)
	PostMessage(ctx context.Context, actor *model.User, chatID uuid.UUID, text string) (*model.SupportMessage, error)
	SetStatus(ctx context.Context, chatID uuid.UUID, status string) error
}

type supportService struct {
	store repository.Store
}

func NewSupportService(store repository.Store) SupportService {
	return &supportService{store: store}
}

func (s *supportService) CreateChat(ctx context.Context, userID uuid.UUID, subject string) (*model.SupportChat, error) {
	subject = strings.TrimSpace(subject)
	if len([]rune(subject)) < 5 {
		return nil, apperr.Invalid("Subject must be at least 5 characters")
	}
	chat := &model.SupportChat{UserID: userID, Subject: subject}
	if err := s.store.Support().CreateChat(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *supportService) ListChats(ctx context.Context, userID uuid.UUID) ([]model.SupportChat, error) {
	return s.store.Support().ListChats(ctx, &userID)
}

func (s *supportService) ListAllChats(ctx context.Context) ([]model.SupportChat, error) {
	return s.store.Support().ListChats(ctx, nil)
}

func (s *supportService) authorize(ctx context.Context, store repository.Store, actor *model.User, chatID uuid.UUID) (*model.SupportChat, error) {
	chat, err := store.Support().GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, apperr.NotFound("Chat not found")
	}
	if chat.UserID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("Access denied")
	}
	return chat, nil
}

func (s *supportService) OpenChat(ctx context.Context, actor *model.User, chatID uuid.UUID) (*ChatThread, error) {
	chat, err := s.authorize(ctx, s.store, actor, chatID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Support().MarkRead(ctx, chatID, actor.ID); err != nil {
		return nil, err
	}
	msgs, err := s.store.Support().ListMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return &ChatThread{Chat: chat, Messages: msgs}, nil
}

func (s *supportService) PostMessage(ctx context.Context, actor *model.User, chatID uuid.UUID, text string) (*model.SupportMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Invalid("Message cannot be empty")
	}
	var msg *model.SupportMessage
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		chat, err := s.authorize(ctx, tx, actor, chatID)
		if err != nil {
			return err
		}
		sender := model.SenderUser
		if actor.IsAdmin() {
			sender = model.SenderAdmin
		}
		msg = &model.SupportMessage{ChatID: chatID, SenderID: actor.ID, SenderType: sender, Message: text}
		if err := tx.Support().CreateMessage(ctx, msg); err != nil {
			return err
		}
		chat.LastMessageAt = time.Now().UTC()
		return tx.Support().UpdateChat(ctx, chat)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *supportService) SetStatus(ctx context.Context, chatID uuid.UUID, status string) error {
	st := model.ChatStatus(status)
	if !st.Valid() {
		return apperr.Invalid("Status must be open, in_progress or closed")
	}
	return s.store.WithTx(ctx, func(tx repository.Store) error {
		chat, err := tx.Support().GetChat(ctx, chatID)
		if err != nil {
			return err
		}
		if chat == nil {
			return apperr.NotFound("Chat not found")
		}
		chat.Status = st
		return tx.Support().UpdateChat(ctx, chat)
	})
}
