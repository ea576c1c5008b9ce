package repository

import (
	"context"
	"fmt"

	"timebank/internal/models"

	"gorm.io/gorm"
)

// CommunityRepository stores city room messages.
type CommunityRepository interface {
	Create(ctx context.Context, msg *models.CommunityMessage) error
	ListByCity(ctx context.Context, city string, limit int) ([]models.CommunityMessage, error)
}

type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository returns a new CommunityRepository implementation.
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) Create(ctx context.Context, msg *models.CommunityMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("create community message: %w", err)
	}
	return nil
}

// ListByCity returns the latest limit messages of a room, oldest first.
func (r *communityRepository) ListByCity(ctx context.Context, city string, limit int) ([]models.CommunityMessage, error) {
	var msgs []models.CommunityMessage
	sub := r.db.WithContext(ctx).Model(&models.CommunityMessage{}).
		Where("city = ?", city).
		Order("created_at DESC").Order("id DESC").
		Limit(clampLimit(limit))
	err := r.db.WithContext(ctx).Table("(?) AS recent", sub).
		Order("created_at ASC").Order("id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("list community messages: %w", err)
	}
	return msgs, nil
}
