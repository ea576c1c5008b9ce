package repository

import (
	"context"
	"errors"
	"fmt"

	"timebank/internal/models"

	"gorm.io/gorm"
)

// HireRequestRepository defines persistence operations for hire requests.
type HireRequestRepository interface {
	WithTx(tx *gorm.DB) HireRequestRepository
	Create(ctx context.Context, req *models.HireRequest) error
	Get(ctx context.Context, taskID, requestID uint) (*models.HireRequest, error)
	ListByTask(ctx context.Context, taskID uint) ([]models.HireRequest, error)
	HasPending(ctx context.Context, taskID, requesterID uint) (bool, error)
	MarkAccepted(ctx context.Context, requestID uint) (bool, error)
}

type hireRequestRepository struct {
	db *gorm.DB
}

// NewHireRequestRepository returns a new HireRequestRepository implementation.
func NewHireRequestRepository(db *gorm.DB) HireRequestRepository {
	return &hireRequestRepository{db: db}
}

func (r *hireRequestRepository) WithTx(tx *gorm.DB) HireRequestRepository {
	return &hireRequestRepository{db: tx}
}

func (r *hireRequestRepository) Create(ctx context.Context, req *models.HireRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("hire request already pending")
		}
		return fmt.Errorf("create hire request: %w", err)
	}
	return nil
}

func (r *hireRequestRepository) Get(ctx context.Context, taskID, requestID uint) (*models.HireRequest, error) {
	var req models.HireRequest
	err := r.db.WithContext(ctx).Where("id = ? AND task_id = ?", requestID, taskID).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("HireRequest", requestID)
		}
		return nil, fmt.Errorf("get hire request %d: %w", requestID, err)
	}
	return &req, nil
}

func (r *hireRequestRepository) ListByTask(ctx context.Context, taskID uint) ([]models.HireRequest, error) {
	var reqs []models.HireRequest
	err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("created_at ASC").Order("id ASC").Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("list hire requests: %w", err)
	}
	return reqs, nil
}

func (r *hireRequestRepository) HasPending(ctx context.Context, taskID, requesterID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.HireRequest{}).
		Where("task_id = ? AND requester_id = ? AND status = ?", taskID, requesterID, models.HireRequestPending).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count hire requests: %w", err)
	}
	return n > 0, nil
}

func (r *hireRequestRepository) MarkAccepted(ctx context.Context, requestID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.HireRequest{}).
		Where("id = ? AND status = ?", requestID, models.HireRequestPending).
		Update("status", models.HireRequestAccepted)
	if res.Error != nil {
		return false, fmt.Errorf("accept hire request %d: %w", requestID, res.Error)
	}
	return res.RowsAffected == 1, nil
}
