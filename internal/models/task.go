package models

import (
	"time"
)

// TaskKind is offer (creator provides the service) or request (creator needs it).
type TaskKind string

const (
	TaskKindOffer   TaskKind = "offer"
	TaskKindRequest TaskKind = "request"
)

// TaskStatus only advances forward: open -> in_progress -> pending_validation -> completed.
// Cancellation deletes an open task instead of storing a status.
type TaskStatus string

const (
	TaskStatusOpen              TaskStatus = "open"
	TaskStatusInProgress        TaskStatus = "in_progress"
	TaskStatusPendingValidation TaskStatus = "pending_validation"
	TaskStatusCompleted         TaskStatus = "completed"
)

// Urgency of a task.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// TaskCategories lists the categories a task may be filed under.
var TaskCategories = []string{
	"Tech Support",
	"Home Help",
	"Teaching/Tutoring",
	"Creative Work",
	"Administrative",
	"Gardening",
	"Pet Care",
	"Cooking",
	"Language Practice",
	"Fitness/Sports",
	"Other",
}

// TimeOptions are the allowed durations in minutes.
var TimeOptions = []int{15, 30, 45, 60}

// DefaultTimeRequired is used when a task is created without a duration.
const DefaultTimeRequired = 30

// Task is a unit of work paid for in time credits.
type Task struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"size:200;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	Category     string     `gorm:"size:60;not null;index" json:"category"`
	Kind         TaskKind   `gorm:"column:task_type;type:varchar(20);not null;default:'offer';index" json:"task_type"`
	TimeRequired int        `gorm:"not null" json:"time_required"`
	CreditsValue int        `gorm:"not null" json:"credits_value"`
	Status       TaskStatus `gorm:"type:varchar(30);not null;default:'open';index" json:"status"`
	Urgency      Urgency    `gorm:"type:varchar(10);not null;default:'medium'" json:"urgency"`
	City         string     `gorm:"size:120;index" json:"city"`
	Country      string     `gorm:"size:120" json:"country"`

	CreatedByID    uint   `gorm:"not null;index" json:"created_by"`
	CreatedByName  string `json:"created_by_name"`
	CreatedByEmail string `json:"created_by_email"`
	CreatedByPhoto string `json:"created_by_photo"`

	AssignedToID    *uint  `gorm:"index" json:"assigned_to,omitempty"`
	AssignedToName  string `json:"assigned_to_name,omitempty"`
	AssignedToEmail string `json:"assigned_to_email,omitempty"`
	AssignedToPhoto string `json:"assigned_to_photo,omitempty"`

	BeforePhotoURL  string `json:"before_photo_url,omitempty"`
	AfterPhotoURL   string `json:"after_photo_url,omitempty"`
	ValidationNotes string `gorm:"type:text" json:"ai_validation_notes,omitempty"`
	ConfidenceScore *int   `json:"ai_confidence_score,omitempty"`

	CreatorConfirmed  bool       `gorm:"not null;default:false" json:"creator_confirmed"`
	AssigneeConfirmed bool       `gorm:"not null;default:false" json:"assignee_confirmed"`
	CompletedAt       *time.Time `json:"completed_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	HireRequests []HireRequest `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"hire_requests,omitempty"`
}

// IsCreator reports whether userID created the task.
func (t *Task) IsCreator(userID uint) bool {
	return t.CreatedByID == userID
}

// IsAssignee reports whether userID is the task's assignee.
func (t *Task) IsAssignee(userID uint) bool {
	return t.AssignedToID != nil && *t.AssignedToID == userID
}

// PerformerID is the party doing the work: the assignee of a request, the
// creator of an offer. Zero when a request has no assignee yet.
func (t *Task) PerformerID() uint {
	if t.Kind == TaskKindOffer {
		return t.CreatedByID
	}
	if t.AssignedToID == nil {
		return 0
	}
	return *t.AssignedToID
}

// PayerID is the party whose balance is debited on settlement. For an open
// offer this is the prospective assignee and is not known yet.
func (t *Task) PayerID() uint {
	if t.Kind == TaskKindRequest {
		return t.CreatedByID
	}
	if t.AssignedToID == nil {
		return 0
	}
	return *t.AssignedToID
}

// PayeeID is the party credited on settlement.
func (t *Task) PayeeID() uint {
	if t.Kind == TaskKindOffer {
		return t.CreatedByID
	}
	if t.AssignedToID == nil {
		return 0
	}
	return *t.AssignedToID
}

// Handshake returns the confirmation state derived from the two flags.
func (t *Task) Handshake() HandshakeState {
	return HandshakeFromFlags(t.CreatorConfirmed, t.AssigneeConfirmed)
}

// ValidCategory reports whether c is one of TaskCategories.
func ValidCategory(c string) bool {
	for _, known := range TaskCategories {
		if known == c {
			return true
		}
	}
	return false
}

// ValidTimeRequired reports whether minutes is one of TimeOptions.
func ValidTimeRequired(minutes int) bool {
	for _, m := range TimeOptions {
		if m == minutes {
			return true
		}
	}
	return false
}
