package service

import (
	"context"
	"strings"
	"time"

	"timebank/internal/models"
	"timebank/internal/notifications"
	"timebank/internal/observability"
	"timebank/internal/validation"

	"gorm.io/gorm"
)

const previewLength = 120

// ChatService provides direct chat business logic.
type ChatService struct {
	db     *gorm.DB
	repos  Repositories
	events EventPublisher
	now    func() time.Time
}

// NewChatService returns a new ChatService.
func NewChatService(db *gorm.DB, repos Repositories, events EventPublisher) *ChatService {
	return &ChatService{
		db:     db,
		repos:  repos,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// FindOrCreate returns the single chat between a and b, creating it on first
// contact. Argument order does not matter.
func (s *ChatService) FindOrCreate(ctx context.Context, a, b uint) (*models.Chat, error) {
	if a == b {
		return nil, models.NewValidationError("cannot start a chat with yourself")
	}
	if _, err := s.repos.Users.GetByID(ctx, b); err != nil {
		return nil, err
	}
	chat, err := s.repos.Chats.GetByPair(ctx, a, b)
	if err == nil {
		return chat, nil
	}
	if !models.IsCode(err, models.CodeNotFound) {
		return nil, err
	}
	return s.repos.Chats.CreateIfAbsent(ctx, a, b, s.now())
}

func (s *ChatService) participantChat(ctx context.Context, chatID, userID uint) (*models.Chat, error) {
	chat, err := s.repos.Chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, models.NewForbiddenError("not a participant in this chat")
	}
	return chat, nil
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= previewLength {
		return text
	}
	return string(r[:previewLength]) + "…"
}

// SendMessage appends a message from senderID to the other participant. The
// append, the preview update and the recipient's counter increment commit
// together.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID uint, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if err := validation.ValidateMessageText(text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	chat, err := s.participantChat(ctx, chatID, senderID)
	if err != nil {
		return nil, err
	}
	recipientID := chat.Other(senderID)

	msg := &models.Message{
		ChatID:      chat.ID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Text:        text,
		CreatedAt:   s.now(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chats := s.repos.Chats.WithTx(tx)
		if err := chats.AppendMessage(ctx, msg); err != nil {
			return err
		}
		if err := chats.UpdatePreview(ctx, chat.ID, preview(text), msg.CreatedAt); err != nil {
			return err
		}
		return chats.IncrementUnread(ctx, chat.ID, recipientID)
	})
	if err != nil {
		return nil, err
	}

	observability.MessagesSentTotal.WithLabelValues("direct").Inc()
	publish(ctx, s.events, notifications.Event{
		Collection: notifications.CollectionChats,
		Kind:       notifications.KindChatMessage,
		DocID:      chat.ID,
		Users:      []uint{senderID, recipientID},
		Payload:    msg,
	})
	return msg, nil
}

// MarkRead zeroes userID's counter for the chat and flags the messages
// addressed to them. The other participant's counter is untouched.
func (s *ChatService) MarkRead(ctx context.Context, chatID, userID uint) error {
	if _, err := s.participantChat(ctx, chatID, userID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chats := s.repos.Chats.WithTx(tx)
		if err := chats.ResetUnread(ctx, chatID, userID); err != nil {
			return err
		}
		_, err := chats.MarkMessagesRead(ctx, chatID, userID)
		return err
	})
	if err != nil {
		return err
	}

	publish(ctx, s.events, notifications.Event{
		Collection: notifications.CollectionChats,
		Kind:       notifications.KindChatRead,
		DocID:      chatID,
		Users:      []uint{userID},
	})
	return nil
}

func (s *ChatService) ListChats(ctx context.Context, userID uint) ([]models.Chat, error) {
	return s.repos.Chats.ListForUser(ctx, userID)
}

// ListMessages returns the latest messages of a chat, oldest first.
func (s *ChatService) ListMessages(ctx context.Context, chatID, userID uint, limit int) ([]models.Message, error) {
	if _, err := s.participantChat(ctx, chatID, userID); err != nil {
		return nil, err
	}
	return s.repos.Chats.ListMessages(ctx, chatID, limit)
}

// TotalUnread sums the user's per-chat counters.
func (s *ChatService) TotalUnread(ctx context.Context, userID uint) (int, error) {
	return s.repos.Chats.TotalUnread(ctx, userID)
}
