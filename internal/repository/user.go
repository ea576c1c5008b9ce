package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"timebank/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetForUpdate(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id uint, changes ProfileChanges) error
	SetVerified(ctx context.Context, id uint, verified bool) error
	AdjustCredits(ctx context.Context, id uint, delta int) error
	IncrementCounters(ctx context.Context, id uint, completed, received int) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

// ProfileChanges lists the editable profile columns; nil fields are left alone.
type ProfileChanges struct {
	FullName           *string
	City               *string
	Country            *string
	Bio                *string
	PhotoURL           *string
	Skills             *[]string
	AvailableTimeSlots *[]string
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) first(ctx context.Context, q *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := q.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(ctx, r.db, id)
}

// GetForUpdate locks the user row for the surrounding transaction.
func (r *userRepository) GetForUpdate(ctx context.Context, id uint) (*models.User, error) {
	return r.first(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", email)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.User, error) {
	out := make(map[uint]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("email already registered")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uint, c ProfileChanges) error {
	updates := map[string]interface{}{}
	if c.FullName != nil {
		updates["full_name"] = *c.FullName
	}
	if c.City != nil {
		updates["city"] = *c.City
	}
	if c.Country != nil {
		updates["country"] = *c.Country
	}
	if c.Bio != nil {
		updates["bio"] = *c.Bio
	}
	if c.PhotoURL != nil {
		updates["photo_url"] = *c.PhotoURL
	}
	if c.Skills != nil {
		// Select + Updates runs the json serializer on the slice.
		if err := r.db.WithContext(ctx).Model(&models.User{ID: id}).Select("skills").
			Updates(&models.User{Skills: *c.Skills}).Error; err != nil {
			return fmt.Errorf("update skills: %w", err)
		}
	}
	if c.AvailableTimeSlots != nil {
		if err := r.db.WithContext(ctx).Model(&models.User{ID: id}).Select("available_time_slots").
			Updates(&models.User{AvailableTimeSlots: *c.AvailableTimeSlots}).Error; err != nil {
			return fmt.Errorf("update time slots: %w", err)
		}
	}
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) SetVerified(ctx context.Context, id uint, verified bool) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND account_kind = ?", id, models.AccountOrganization).
		Update("is_verified", verified)
	if res.Error != nil {
		return fmt.Errorf("set verified: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Organization", id)
	}
	return nil
}

// AdjustCredits applies delta as an in-database expression so concurrent
// adjustments commute.
func (r *userRepository) AdjustCredits(ctx context.Context, id uint, delta int) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("time_credits", gorm.Expr("time_credits + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("adjust credits for user %d: %w", id, res.Error)
	}
	if res.RowsAffected != 1 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) IncrementCounters(ctx context.Context, id uint, completed, received int) error {
	if completed < 0 || received < 0 {
		return fmt.Errorf("counters only increase")
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"total_tasks_completed": gorm.Expr("total_tasks_completed + ?", completed),
		"total_tasks_received":  gorm.Expr("total_tasks_received + ?", received),
	})
	if res.Error != nil {
		return fmt.Errorf("increment counters for user %d: %w", id, res.Error)
	}
	if res.RowsAffected != 1 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("id ASC").Limit(clampLimit(limit)).Offset(offset).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
