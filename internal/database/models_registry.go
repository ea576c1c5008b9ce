package database

import "timebank/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Task{},
		&models.HireRequest{},
		&models.CreditTransaction{},
		&models.Chat{},
		&models.ChatParticipant{},
		&models.Message{},
		&models.CommunityMessage{},
	}
}
