package repository

import (
	"context"
	"fmt"

	"timebank/internal/models"

	"gorm.io/gorm"
)

// LedgerRepository appends and reads credit transactions. Rows are never updated or deleted.
type LedgerRepository interface {
	WithTx(tx *gorm.DB) LedgerRepository
	Append(ctx context.Context, entry *models.CreditTransaction) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.CreditTransaction, error)
	List(ctx context.Context, limit, offset int) ([]models.CreditTransaction, error)
	Balances(ctx context.Context) ([]LedgerBalance, error)
}

// LedgerBalance is one user's stored balance next to the ledger totals.
type LedgerBalance struct {
	UserID      uint
	FullName    string
	AccountKind models.AccountKind
	TimeCredits int
	Received    int
	Paid        int
}

// Expected is the balance implied by the starting grant and the ledger.
func (b LedgerBalance) Expected() int {
	return b.AccountKind.StartingCredits() + b.Received - b.Paid
}

// Drift is stored balance minus the ledger-implied balance.
func (b LedgerBalance) Drift() int {
	return b.TimeCredits - b.Expected()
}

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository returns a new LedgerRepository implementation.
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) WithTx(tx *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: tx}
}

// Append inserts entry. A second row of the same type for the same task
// returns ErrDuplicate.
func (r *ledgerRepository) Append(ctx context.Context, entry *models.CreditTransaction) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ledger entry for task %d: %w", entry.TaskID, ErrDuplicate)
		}
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.CreditTransaction, error) {
	var entries []models.CreditTransaction
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order("created_at DESC").Order("id DESC").
		Limit(clampLimit(limit)).Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list ledger for user %d: %w", userID, err)
	}
	return entries, nil
}

func (r *ledgerRepository) List(ctx context.Context, limit, offset int) ([]models.CreditTransaction, error) {
	var entries []models.CreditTransaction
	err := r.db.WithContext(ctx).Order("id DESC").Limit(clampLimit(limit)).Offset(offset).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	return entries, nil
}

func (r *ledgerRepository) Balances(ctx context.Context) ([]LedgerBalance, error) {
	var rows []LedgerBalance
	err := r.db.WithContext(ctx).Raw(`
SELECT
	u.id AS user_id,
	u.full_name AS full_name,
	u.account_kind AS account_kind,
	u.time_credits AS time_credits,
	COALESCE((SELECT SUM(amount) FROM credit_transactions WHERE to_user_id = u.id), 0) AS received,
	COALESCE((SELECT SUM(amount) FROM credit_transactions WHERE from_user_id = u.id), 0) AS paid
FROM users u
ORDER BY u.id`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ledger balances: %w", err)
	}
	return rows, nil
}
