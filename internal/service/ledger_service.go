package service

import (
	"context"

	"timebank/internal/models"
	"timebank/internal/repository"
)

// LedgerService exposes the append-only credit ledger. Entries are only
// written by settlement.
type LedgerService struct {
	repos Repositories
}

func NewLedgerService(repos Repositories) *LedgerService {
	return &LedgerService{repos: repos}
}

// ListByUser returns entries where userID paid or was paid, newest first.
func (s *LedgerService) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.CreditTransaction, error) {
	if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repos.Ledger.ListByUser(ctx, userID, limit, offset)
}

func (s *LedgerService) List(ctx context.Context, limit, offset int) ([]models.CreditTransaction, error) {
	return s.repos.Ledger.List(ctx, limit, offset)
}

// Audit compares each balance with its starting credits plus ledger flows.
// Only rows with non-zero drift are returned unless all is set.
func (s *LedgerService) Audit(ctx context.Context, all bool) ([]repository.LedgerBalance, error) {
	balances, err := s.repos.Ledger.Balances(ctx)
	if err != nil {
		return nil, err
	}
	if all {
		return balances, nil
	}
	drifted := balances[:0]
	for _, b := range balances {
		if b.Drift() != 0 {
			drifted = append(drifted, b)
		}
	}
	return drifted, nil
}
