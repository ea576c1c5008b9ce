// Package models contains the domain entities of the time bank.
package models

import (
	"strings"
	"time"
)

// AccountKind distinguishes people from organizations.
type AccountKind string

const (
	AccountIndividual   AccountKind = "individual"
	AccountOrganization AccountKind = "organization"
)

// StartingCredits is the balance granted at signup.
func (k AccountKind) StartingCredits() int {
	if k == AccountIndividual {
		return 60
	}
	return 0
}

// Valid reports whether k is a known account kind.
func (k AccountKind) Valid() bool {
	return k == AccountIndividual || k == AccountOrganization
}

// DefaultCountry is applied when signup omits a country.
const DefaultCountry = "India"

// User is an identity-linked profile. TimeCredits is in minutes and has no floor.
type User struct {
	ID                  uint        `gorm:"primaryKey" json:"id"`
	FullName            string      `gorm:"size:120;not null" json:"full_name"`
	Email               string      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password            string      `gorm:"not null" json:"-"`
	AccountKind         AccountKind `gorm:"type:varchar(20);not null;default:'individual'" json:"account_type"`
	TimeCredits         int         `gorm:"not null;default:0" json:"time_credits"`
	City                string      `gorm:"size:120;index" json:"city"`
	Country             string      `gorm:"size:120" json:"country"`
	Skills              []string    `gorm:"serializer:json" json:"skills"`
	AvailableTimeSlots  []string    `gorm:"serializer:json" json:"available_time_slots"`
	Bio                 string      `gorm:"type:text" json:"bio"`
	PhotoURL            string      `json:"photo_url"`
	TotalTasksCompleted int         `gorm:"not null;default:0" json:"total_tasks_completed"`
	TotalTasksReceived  int         `gorm:"not null;default:0" json:"total_tasks_received"`
	IsVerified          bool        `gorm:"not null;default:false" json:"is_verified"`
	IsAdmin             bool        `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// HasSkill reports whether the user lists skill, case-insensitively.
func (u *User) HasSkill(skill string) bool {
	for _, s := range u.Skills {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(skill)) {
			return true
		}
	}
	return false
}

// UserSnapshot is the denormalized display data copied onto tasks, hire
// requests and community messages at write time. Later profile edits do not
// rewrite existing snapshots.
type UserSnapshot struct {
	Name     string
	Email    string
	PhotoURL string
}

// Snapshot captures the current display fields of u.
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{Name: u.FullName, Email: u.Email, PhotoURL: u.PhotoURL}
}
