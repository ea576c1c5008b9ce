package models

import "time"

// HireRequestStatus defines lifecycle states for hire requests.
type HireRequestStatus string

const (
	HireRequestPending  HireRequestStatus = "pending"
	HireRequestAccepted HireRequestStatus = "accepted"
)

// HireRequest is a worker's bid to be assigned to an offer-kind task.
// Accepting one leaves its siblings pending.
type HireRequest struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	TaskID           uint              `gorm:"not null;index" json:"task_id"`
	RequesterID      uint              `gorm:"not null;index" json:"requester_id"`
	RequesterName    string            `json:"requester_name"`
	RequesterEmail   string            `json:"requester_email"`
	RequesterPhoto   string            `json:"requester_photo"`
	Message          string            `gorm:"type:text" json:"message"`
	TaskCreditsValue int               `gorm:"not null" json:"task_credits_value"`
	Status           HireRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt        time.Time         `json:"timestamp"`
	UpdatedAt        time.Time         `json:"updated_at"`
}
