package models

import (
	"fmt"
	"time"
)

// TransactionTaskCompleted tags ledger rows written by settlement.
const TransactionTaskCompleted = "task_completed"

// CreditTransaction is an append-only ledger entry. The unique index on
// (task_id, transaction_type) allows one settlement row per task.
type CreditTransaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	FromUserID      uint      `gorm:"not null;index" json:"from_user_id"`
	ToUserID        uint      `gorm:"not null;index" json:"to_user_id"`
	TaskID          uint      `gorm:"not null;uniqueIndex:idx_credit_tx_task_type" json:"task_id"`
	Amount          int       `gorm:"not null" json:"amount"`
	TransactionType string    `gorm:"size:40;not null;uniqueIndex:idx_credit_tx_task_type" json:"transaction_type"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"timestamp"`
}

// CompletionDescription is the ledger description for a settled task.
func CompletionDescription(title string) string {
	return fmt.Sprintf("Completed: %s", title)
}
