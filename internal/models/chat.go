package models

import "time"

// Chat is a two-party conversation. The participant pair is stored sorted
// (UserLowID < UserHighID) and unique, so each unordered pair has one chat.
type Chat struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	UserLowID      uint              `gorm:"not null;uniqueIndex:idx_chat_pair" json:"-"`
	UserHighID     uint              `gorm:"not null;uniqueIndex:idx_chat_pair" json:"-"`
	LastMessage    string            `gorm:"type:text" json:"last_message"`
	LastUpdated    time.Time         `json:"last_updated"`
	CreatedAt      time.Time         `json:"created_at"`
	Participants   []ChatParticipant `gorm:"foreignKey:ChatID" json:"-"`
	ParticipantIDs []uint            `gorm:"-" json:"participants"`
	UnreadCount    map[uint]int      `gorm:"-" json:"unread_count"`
}

// ChatInitialMessage is the preview of a freshly created chat.
const ChatInitialMessage = "Chat created"

// SortedPair canonicalizes two user ids.
func SortedPair(a, b uint) (low, high uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// Other returns the participant that is not userID, or 0 if userID is not in the chat.
func (c *Chat) Other(userID uint) uint {
	switch userID {
	case c.UserLowID:
		return c.UserHighID
	case c.UserHighID:
		return c.UserLowID
	default:
		return 0
	}
}

// HasParticipant reports whether userID belongs to the chat.
func (c *Chat) HasParticipant(userID uint) bool {
	return c.Other(userID) != 0
}

// Hydrate fills the JSON-facing participant list and unread map from the loaded rows.
func (c *Chat) Hydrate() {
	c.ParticipantIDs = []uint{c.UserLowID, c.UserHighID}
	c.UnreadCount = make(map[uint]int, 2)
	for _, p := range c.Participants {
		c.UnreadCount[p.UserID] = p.UnreadCount
	}
}

// ChatParticipant carries a user's unread counter for one chat.
// The counter is the authoritative unread state.
type ChatParticipant struct {
	ChatID      uint `gorm:"primaryKey" json:"chat_id"`
	UserID      uint `gorm:"primaryKey;index" json:"user_id"`
	UnreadCount int  `gorm:"not null;default:0" json:"unread_count"`
}

// Message belongs to a chat. IsRead mirrors the counter and is not consulted for unread totals.
type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ChatID      uint      `gorm:"not null;index" json:"chat_id"`
	SenderID    uint      `gorm:"not null" json:"sender_id"`
	RecipientID uint      `gorm:"not null;index" json:"recipient_id"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	IsRead      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time `gorm:"index" json:"timestamp"`
}
