// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"timebank/internal/database"
	"timebank/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory sqlite database. It holds a single
// connection, so concurrent transactions serialize instead of seeing separate
// databases.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

// UserOption customizes CreateUser.
type UserOption func(*models.User)

// WithCredits sets the starting balance.
func WithCredits(n int) UserOption {
	return func(u *models.User) { u.TimeCredits = n }
}

// WithCity sets the lowercased city.
func WithCity(city string) UserOption {
	return func(u *models.User) { u.City = city }
}

// WithSkills sets skill tags.
func WithSkills(skills ...string) UserOption {
	return func(u *models.User) { u.Skills = skills }
}

// AsOrganization makes the user an organization account.
func AsOrganization() UserOption {
	return func(u *models.User) { u.AccountKind = models.AccountOrganization }
}

var userSeq int

// CreateUser inserts an individual user with 60 credits unless overridden.
func CreateUser(t testing.TB, db *gorm.DB, name string, opts ...UserOption) *models.User {
	t.Helper()
	userSeq++
	u := &models.User{
		FullName:    name,
		Email:       fmt.Sprintf("user%d@example.com", userSeq),
		Password:    "x",
		AccountKind: models.AccountIndividual,
		TimeCredits: 60,
		City:        "pune",
		Country:     models.DefaultCountry,
	}
	for _, opt := range opts {
		opt(u)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// Reload re-reads a user row.
func Reload(t testing.TB, db *gorm.DB, id uint) *models.User {
	t.Helper()
	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		t.Fatalf("reload user %d: %v", id, err)
	}
	return &u
}
