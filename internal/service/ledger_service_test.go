package service

import (
	"context"
	"testing"

	"timebank/internal/models"
	"timebank/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_ListAndAudit(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	ledger := NewLedgerService(NewRepositories(f.db))
	creator := testutil.CreateUser(t, f.db, "Asha")
	worker := testutil.CreateUser(t, f.db, "Ravi")
	bystander := testutil.CreateUser(t, f.db, "Zoya")

	task := f.pendingValidation(t, f.inProgressOffer(t, creator, worker, 45))
	_, err := f.svc.ConfirmCompletion(ctx, creator.ID, task.ID)
	require.NoError(t, err)
	_, err = f.svc.ConfirmCompletion(ctx, worker.ID, task.ID)
	require.NoError(t, err)

	for _, id := range []uint{creator.ID, worker.ID} {
		entries, err := ledger.ListByUser(ctx, id, 0, 0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 45, entries[0].Amount)
	}
	entries, err := ledger.ListByUser(ctx, bystander.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = ledger.ListByUser(ctx, 999, 0, 0)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	drift, err := ledger.Audit(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, drift, "settlement keeps balances and ledger in step")

	all, err := ledger.Audit(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// A balance edited outside settlement shows up as drift.
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", bystander.ID).
		Update("time_credits", 75).Error)
	drift, err = ledger.Audit(ctx, false)
	require.NoError(t, err)
	require.Len(t, drift, 1)
	assert.Equal(t, bystander.ID, drift[0].UserID)
	assert.Equal(t, 15, drift[0].Drift())
}
