package cache

import (
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	CommunityKeyPrefix = "community:%s:recent"
)

const (
	UserTTL      = 5 * time.Minute
	CommunityTTL = 30 * time.Second
)

// UserKey is the cached profile of a user.
func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// CommunityKey caches the recent page of a city room.
func CommunityKey(city string) string {
	return fmt.Sprintf(CommunityKeyPrefix, city)
}
