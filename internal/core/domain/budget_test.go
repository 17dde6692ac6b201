package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahrfin/municipal_budget_app/internal/apperrors"
	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
)

func row(approved, blocked, spent string) *domain.BudgetRow {
	return &domain.BudgetRow{
		BudgetRowID:    "row-1",
		ApprovedAmount: decimal.RequireFromString(approved),
		BlockedAmount:  decimal.RequireFromString(blocked),
		SpentAmount:    decimal.RequireFromString(spent),
	}
}

func TestRemainingBalance(t *testing.T) {
	b := row("1000", "600", "100")
	assert.True(t, b.RemainingBalance().Equal(decimal.RequireFromString("300")))
}

func TestBlock(t *testing.T) {
	t.Run("within remaining", func(t *testing.T) {
		b := row("1000", "0", "0")
		require.NoError(t, b.Block(decimal.RequireFromString("600")))
		assert.True(t, b.BlockedAmount.Equal(decimal.RequireFromString("600")))
	})

	t.Run("exactly remaining", func(t *testing.T) {
		b := row("1000", "600", "100")
		require.NoError(t, b.Block(decimal.RequireFromString("300")))
		assert.True(t, b.RemainingBalance().IsZero())
	})

	t.Run("exceeds remaining", func(t *testing.T) {
		b := row("1000", "600", "0")
		err := b.Block(decimal.RequireFromString("500"))
		var insufficient *apperrors.InsufficientFundsError
		require.ErrorAs(t, err, &insufficient)
		assert.True(t, insufficient.Remaining.Equal(decimal.RequireFromString("400")))
		assert.True(t, b.BlockedAmount.Equal(decimal.RequireFromString("600")), "row untouched on failure")
	})

	t.Run("non-positive amount", func(t *testing.T) {
		b := row("1000", "0", "0")
		assert.ErrorIs(t, b.Block(decimal.Zero), apperrors.ErrValidation)
		assert.ErrorIs(t, b.Block(decimal.RequireFromString("-1")), apperrors.ErrValidation)
	})
}

func TestRelease(t *testing.T) {
	t.Run("within blocked", func(t *testing.T) {
		b := row("1000", "600", "0")
		require.NoError(t, b.Release(decimal.RequireFromString("100")))
		assert.True(t, b.BlockedAmount.Equal(decimal.RequireFromString("500")))
	})

	t.Run("exceeds blocked", func(t *testing.T) {
		b := row("1000", "50", "0")
		err := b.Release(decimal.RequireFromString("100"))
		var invalid *apperrors.InvalidOperationError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "RELEASE", invalid.Operation)
	})
}

func TestConfirmSpend(t *testing.T) {
	t.Run("reclassifies without changing remaining", func(t *testing.T) {
		b := row("1000", "600", "0")
		before := b.RemainingBalance()
		require.NoError(t, b.ConfirmSpend(decimal.RequireFromString("300")))
		assert.True(t, b.BlockedAmount.Equal(decimal.RequireFromString("300")))
		assert.True(t, b.SpentAmount.Equal(decimal.RequireFromString("300")))
		assert.True(t, b.RemainingBalance().Equal(before))
	})

	t.Run("exceeds blocked", func(t *testing.T) {
		b := row("1000", "200", "0")
		err := b.ConfirmSpend(decimal.RequireFromString("201"))
		var invalid *apperrors.InvalidOperationError
		require.ErrorAs(t, err, &invalid)
	})
}

func TestTransactionLadder(t *testing.T) {
	steps := []struct {
		from  domain.TransactionStatus
		level int
		next  domain.TransactionStatus
	}{
		{domain.TxnPendingL1, 1, domain.TxnPendingL2},
		{domain.TxnPendingL2, 2, domain.TxnPendingL3},
		{domain.TxnPendingL3, 3, domain.TxnPendingL4},
		{domain.TxnPendingL4, 4, domain.TxnApproved},
		{domain.TxnPendingLegacy, 1, domain.TxnApproved},
	}
	for _, step := range steps {
		txn := &domain.Transaction{Status: step.from}

		level, err := txn.RequiredApprovalLevel()
		require.NoError(t, err, "status %s", step.from)
		assert.Equal(t, step.level, level)

		next, err := txn.NextStatusOnApproval()
		require.NoError(t, err)
		assert.Equal(t, step.next, next)
	}

	for _, terminal := range []domain.TransactionStatus{domain.TxnDraft, domain.TxnApproved, domain.TxnRejected} {
		txn := &domain.Transaction{Status: terminal}
		_, err := txn.RequiredApprovalLevel()
		var invalid *apperrors.InvalidTransitionError
		assert.ErrorAs(t, err, &invalid, "status %s is not approvable", terminal)
	}
}

func TestUserApprovalLevels(t *testing.T) {
	assert.Equal(t, 0, (&domain.User{Role: domain.RoleUser}).ApprovalLevel())
	assert.Equal(t, 2, (&domain.User{Role: domain.RoleAdminL2}).ApprovalLevel())

	super := &domain.User{Role: domain.RoleAdmin}
	for level := 1; level <= 4; level++ {
		assert.True(t, super.CanActAtLevel(level))
	}

	l3 := &domain.User{Role: domain.RoleAdminL3}
	assert.True(t, l3.CanActAtLevel(3))
	assert.False(t, l3.CanActAtLevel(2))
	assert.False(t, (&domain.User{Role: domain.RoleUser}).CanActAtLevel(1))
}
