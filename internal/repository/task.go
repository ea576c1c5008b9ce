package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"timebank/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskFilter selects tasks by equality and membership predicates combined with AND.
type TaskFilter struct {
	City           string
	Category       string
	Kind           models.TaskKind
	Statuses       []models.TaskStatus
	CreatedBy      uint
	AssignedTo     uint
	Involving      uint // creator or assignee
	ExcludeCreator uint
	Search         string
	Limit          int
	Offset         int
}

// TaskRepository defines persistence operations for tasks. Every state
// transition is a guarded UPDATE that only matches the expected prior status;
// callers treat zero affected rows as a lost race.
type TaskRepository interface {
	WithTx(tx *gorm.DB) TaskRepository
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uint) (*models.Task, error)
	GetForUpdate(ctx context.Context, id uint) (*models.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	DeleteOpen(ctx context.Context, id, creatorID uint) (bool, error)
	Assign(ctx context.Context, id uint, assigneeID uint, snap models.UserSnapshot) (bool, error)
	SetEvidence(ctx context.Context, id uint, beforeURL, afterURL *string) (bool, error)
	MarkPendingValidation(ctx context.Context, id uint, notes string, score int) (bool, error)
	SetConfirmation(ctx context.Context, id uint, party models.ConfirmingParty) (bool, error)
	MarkCompleted(ctx context.Context, id uint, at time.Time) (bool, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository returns a new TaskRepository implementation.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) WithTx(tx *gorm.DB) TaskRepository {
	return &taskRepository{db: tx}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Omit("HireRequests").Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *taskRepository) first(ctx context.Context, q *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	if err := q.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Task", id)
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return &task, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	return r.first(ctx, r.db, id)
}

// GetForUpdate locks the task row for the surrounding transaction.
func (r *taskRepository) GetForUpdate(ctx context.Context, id uint) (*models.Task, error) {
	return r.first(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *taskRepository) List(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	q := r.db.WithContext(ctx).Model(&models.Task{})
	if f.City != "" {
		q = q.Where("city = ?", strings.ToLower(strings.TrimSpace(f.City)))
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Kind != "" {
		q = q.Where("task_type = ?", f.Kind)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.CreatedBy != 0 {
		q = q.Where("created_by_id = ?", f.CreatedBy)
	}
	if f.AssignedTo != 0 {
		q = q.Where("assigned_to_id = ?", f.AssignedTo)
	}
	if f.Involving != 0 {
		q = q.Where("created_by_id = ? OR assigned_to_id = ?", f.Involving, f.Involving)
	}
	if f.ExcludeCreator != 0 {
		q = q.Where("created_by_id <> ?", f.ExcludeCreator)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var tasks []models.Task
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(clampLimit(f.Limit)).Offset(f.Offset).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// DeleteOpen removes an open task owned by creatorID together with its hire requests.
func (r *taskRepository) DeleteOpen(ctx context.Context, id, creatorID uint) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND created_by_id = ? AND status = ?", id, creatorID, models.TaskStatusOpen).
			Delete(&models.Task{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return tx.Where("task_id = ?", id).Delete(&models.HireRequest{}).Error
	})
	if err != nil {
		return false, fmt.Errorf("delete task %d: %w", id, err)
	}
	return deleted, nil
}

func (r *taskRepository) Assign(ctx context.Context, id uint, assigneeID uint, snap models.UserSnapshot) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND status = ? AND assigned_to_id IS NULL", id, models.TaskStatusOpen).
		Updates(map[string]interface{}{
			"status":            models.TaskStatusInProgress,
			"assigned_to_id":    assigneeID,
			"assigned_to_name":  snap.Name,
			"assigned_to_email": snap.Email,
			"assigned_to_photo": snap.PhotoURL,
		})
	if res.Error != nil {
		return false, fmt.Errorf("assign task %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *taskRepository) SetEvidence(ctx context.Context, id uint, beforeURL, afterURL *string) (bool, error) {
	updates := map[string]interface{}{}
	if beforeURL != nil {
		updates["before_photo_url"] = *beforeURL
	}
	if afterURL != nil {
		updates["after_photo_url"] = *afterURL
	}
	if len(updates) == 0 {
		return false, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND status = ?", id, models.TaskStatusInProgress).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("set evidence on task %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *taskRepository) MarkPendingValidation(ctx context.Context, id uint, notes string, score int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND status = ? AND before_photo_url <> '' AND after_photo_url <> ''", id, models.TaskStatusInProgress).
		Updates(map[string]interface{}{
			"status":           models.TaskStatusPendingValidation,
			"validation_notes": notes,
			"confidence_score": score,
		})
	if res.Error != nil {
		return false, fmt.Errorf("submit task %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *taskRepository) SetConfirmation(ctx context.Context, id uint, party models.ConfirmingParty) (bool, error) {
	column := "creator_confirmed"
	if party == models.PartyAssignee {
		column = "assignee_confirmed"
	}
	res := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND status = ?", id, models.TaskStatusPendingValidation).
		Update(column, true)
	if res.Error != nil {
		return false, fmt.Errorf("confirm task %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// MarkCompleted is the settlement idempotency marker: only one caller can
// move a fully confirmed task out of pending_validation.
func (r *taskRepository) MarkCompleted(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND status = ? AND creator_confirmed = ? AND assignee_confirmed = ?",
			id, models.TaskStatusPendingValidation, true, true).
		Updates(map[string]interface{}{
			"status":       models.TaskStatusCompleted,
			"completed_at": at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("complete task %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}
