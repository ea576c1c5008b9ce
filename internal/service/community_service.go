package service

import (
	"context"
	"strings"
	"time"

	"timebank/internal/cache"
	"timebank/internal/models"
	"timebank/internal/notifications"
	"timebank/internal/observability"
	"timebank/internal/validation"
)

const communityPageSize = 100

// CommunityService runs the city-scoped public rooms.
type CommunityService struct {
	repos  Repositories
	cache  *cache.Cache
	events EventPublisher
	now    func() time.Time
}

// NewCommunityService returns a new CommunityService.
func NewCommunityService(repos Repositories, c *cache.Cache, events EventPublisher) *CommunityService {
	return &CommunityService{
		repos:  repos,
		cache:  c,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func normalizeCity(city string) (string, error) {
	city = strings.ToLower(strings.TrimSpace(city))
	if city == "" {
		return "", models.NewValidationError("city is required")
	}
	return city, nil
}

// Post appends a message to the room of city. The sender's name and photo
// are copied onto the message.
func (s *CommunityService) Post(ctx context.Context, actorID uint, city, text string) (*models.CommunityMessage, error) {
	room, err := normalizeCity(city)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if err := validation.ValidateMessageText(text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	sender, err := s.repos.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	msg := &models.CommunityMessage{
		City:         room,
		Text:         text,
		UserID:       sender.ID,
		UserName:     sender.FullName,
		UserPhotoURL: sender.PhotoURL,
		CreatedAt:    s.now(),
	}
	if err := s.repos.Community.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.CommunityKey(room))

	observability.MessagesSentTotal.WithLabelValues("community").Inc()
	publish(ctx, s.events, notifications.Event{
		Collection: notifications.CollectionCommunity,
		Kind:       notifications.KindCommunityMessage,
		DocID:      msg.ID,
		City:       room,
		Payload:    msg,
	})
	return msg, nil
}

// List returns the latest messages of a room in ascending time order.
func (s *CommunityService) List(ctx context.Context, city string) ([]models.CommunityMessage, error) {
	room, err := normalizeCity(city)
	if err != nil {
		return nil, err
	}
	var msgs []models.CommunityMessage
	err = s.cache.Aside(ctx, cache.CommunityKey(room), &msgs, cache.CommunityTTL, func() error {
		var err error
		msgs, err = s.repos.Community.ListByCity(ctx, room, communityPageSize)
		return err
	})
	if err != nil {
		return nil, err
	}
	return msgs, nil
}
