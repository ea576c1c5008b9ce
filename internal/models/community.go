package models

import "time"

// CommunityMessage is a post in a city room. Rooms are keyed by lowercased city.
type CommunityMessage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	City         string    `gorm:"size:120;not null;index:idx_community_city_time" json:"city"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	UserID       uint      `gorm:"not null" json:"userId"`
	UserName     string    `json:"userName"`
	UserPhotoURL string    `json:"userPhotoURL"`
	CreatedAt    time.Time `gorm:"index:idx_community_city_time" json:"timestamp"`
}
