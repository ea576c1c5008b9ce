package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timebank/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository defines persistence operations for direct chats.
type ChatRepository interface {
	WithTx(tx *gorm.DB) ChatRepository
	GetByID(ctx context.Context, id uint) (*models.Chat, error)
	GetByPair(ctx context.Context, a, b uint) (*models.Chat, error)
	CreateIfAbsent(ctx context.Context, a, b uint, at time.Time) (*models.Chat, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Chat, error)
	AppendMessage(ctx context.Context, msg *models.Message) error
	UpdatePreview(ctx context.Context, chatID uint, text string, at time.Time) error
	IncrementUnread(ctx context.Context, chatID, userID uint) error
	ResetUnread(ctx context.Context, chatID, userID uint) error
	MarkMessagesRead(ctx context.Context, chatID, recipientID uint) (int64, error)
	ListMessages(ctx context.Context, chatID uint, limit int) ([]models.Message, error)
	TotalUnread(ctx context.Context, userID uint) (int, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository returns a new ChatRepository implementation.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) WithTx(tx *gorm.DB) ChatRepository {
	return &chatRepository{db: tx}
}

func (r *chatRepository) GetByID(ctx context.Context, id uint) (*models.Chat, error) {
	var chat models.Chat
	if err := r.db.WithContext(ctx).Preload("Participants").First(&chat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Chat", id)
		}
		return nil, fmt.Errorf("get chat %d: %w", id, err)
	}
	chat.Hydrate()
	return &chat, nil
}

func (r *chatRepository) GetByPair(ctx context.Context, a, b uint) (*models.Chat, error) {
	low, high := models.SortedPair(a, b)
	var chat models.Chat
	err := r.db.WithContext(ctx).Preload("Participants").
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Chat", fmt.Sprintf("%d-%d", low, high))
		}
		return nil, fmt.Errorf("get chat by pair: %w", err)
	}
	chat.Hydrate()
	return &chat, nil
}

// CreateIfAbsent inserts the chat for the pair with zeroed counters. A
// concurrent insert of the same pair is absorbed by the unique index and the
// existing chat is returned.
func (r *chatRepository) CreateIfAbsent(ctx context.Context, a, b uint, at time.Time) (*models.Chat, error) {
	low, high := models.SortedPair(a, b)
	chat := &models.Chat{
		UserLowID:   low,
		UserHighID:  high,
		LastMessage: models.ChatInitialMessage,
		LastUpdated: at,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Omit("Participants").Clauses(clause.OnConflict{DoNothing: true}).Create(chat)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		participants := []models.ChatParticipant{
			{ChatID: chat.ID, UserID: low},
			{ChatID: chat.ID, UserID: high},
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&participants).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return r.GetByPair(ctx, low, high)
}

func (r *chatRepository) ListForUser(ctx context.Context, userID uint) ([]models.Chat, error) {
	var chats []models.Chat
	err := r.db.WithContext(ctx).Preload("Participants").
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Order("last_updated DESC").Order("id DESC").
		Find(&chats).Error
	if err != nil {
		return nil, fmt.Errorf("list chats for user %d: %w", userID, err)
	}
	for i := range chats {
		chats[i].Hydrate()
	}
	return chats, nil
}

func (r *chatRepository) AppendMessage(ctx context.Context, msg *models.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (r *chatRepository) UpdatePreview(ctx context.Context, chatID uint, text string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Chat{}).Where("id = ?", chatID).
		Updates(map[string]interface{}{"last_message": text, "last_updated": at}).Error
	if err != nil {
		return fmt.Errorf("update chat preview: %w", err)
	}
	return nil
}

// IncrementUnread adds one to a participant's counter in the database, never
// from a cached value.
func (r *chatRepository) IncrementUnread(ctx context.Context, chatID, userID uint) error {
	res := r.db.WithContext(ctx).Model(&models.ChatParticipant{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Update("unread_count", gorm.Expr("unread_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("increment unread: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("ChatParticipant", userID)
	}
	return nil
}

func (r *chatRepository) ResetUnread(ctx context.Context, chatID, userID uint) error {
	res := r.db.WithContext(ctx).Model(&models.ChatParticipant{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Update("unread_count", 0)
	if res.Error != nil {
		return fmt.Errorf("reset unread: %w", res.Error)
	}
	return nil
}

func (r *chatRepository) MarkMessagesRead(ctx context.Context, chatID, recipientID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("chat_id = ? AND recipient_id = ? AND is_read = ?", chatID, recipientID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark messages read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ListMessages returns the most recent limit messages in ascending time order.
func (r *chatRepository) ListMessages(ctx context.Context, chatID uint, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).
		Order("created_at DESC").Order("id DESC").
		Limit(clampLimit(limit)).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *chatRepository) TotalUnread(ctx context.Context, userID uint) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.ChatParticipant{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(unread_count), 0)").
		Row().Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total unread: %w", err)
	}
	return int(total), nil
}
