package finance_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/finance-ledger/finance"
	"github.com/warp/finance-ledger/ledger"
)

// =============================================================================
// CATEGORY NAME UNIQUENESS TESTS
// =============================================================================

func TestCategories_Create_DuplicateName_Rejected(t *testing.T) {
	// GIVEN: Alice already has a "Groceries" category
	// WHEN: Creating another category with the same name
	// THEN: Rejected with DUPLICATE_NAME

	s := newServices(t)
	ctx := context.Background()

	mustCategory(t, s, alice, "Groceries", false)

	_, err := s.categories.Create(ctx, alice, "Groceries", true)
	assert.True(t, ledger.IsValidation(err))

	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "DUPLICATE_NAME", verr.Code)
}

func TestCategories_Create_SameNameDifferentUsers_Allowed(t *testing.T) {
	// Uniqueness is per user, not global.

	s := newServices(t)
	mustCategory(t, s, alice, "Groceries", false)
	mustCategory(t, s, bob, "Groceries", false)
}

func TestCategories_Update_DuplicateName_Rejected(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	mustCategory(t, s, alice, "Groceries", false)
	rent := mustCategory(t, s, alice, "Rent", false)

	_, err := s.categories.Update(ctx, alice, rent.ID, "Groceries")
	assert.True(t, ledger.IsValidation(err))
}

func TestCategories_Update_KeepOwnName_Allowed(t *testing.T) {
	// Renaming a category to its current name must not trip the
	// duplicate check against itself.

	s := newServices(t)
	category := mustCategory(t, s, alice, "Groceries", false)

	got, err := s.categories.Update(context.Background(), alice, category.ID, "Groceries")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Groceries", got.Name)
}

// =============================================================================
// DELETION GUARD TESTS
// =============================================================================

func TestCategories_Delete_ReferencedByTransaction_Conflict(t *testing.T) {
	// GIVEN: A category referenced by a transaction
	// WHEN: Deleting it
	// THEN: Rejected with CATEGORY_IN_USE

	s := newServices(t)
	ctx := context.Background()

	account := mustAccount(t, s, alice, "Main", "0")
	category := mustCategory(t, s, alice, "Groceries", false)
	mustExpense(t, s, alice, account.ID, category.ID, "12.00", jan15())

	_, err := s.categories.Delete(ctx, alice, category.ID)
	assert.True(t, ledger.IsConflict(err))

	var cerr *ledger.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "CATEGORY_IN_USE", cerr.Code)
}

func TestCategories_Delete_ReferencedByBudget_Conflict(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	category := mustCategory(t, s, alice, "Groceries", false)
	_, err := s.budgets.Create(ctx, alice, finance.CreateBudget{
		CategoryID:    category.ID,
		Month:         time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		PlannedAmount: decimal.RequireFromString("300"),
	})
	require.NoError(t, err)

	_, err = s.categories.Delete(ctx, alice, category.ID)
	assert.True(t, ledger.IsConflict(err))
}

func TestCategories_Delete_Unreferenced_Succeeds(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	category := mustCategory(t, s, alice, "Ephemeral", false)
	deleted, err := s.categories.Delete(ctx, alice, category.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := s.categories.GetByID(ctx, alice, category.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCategories_Delete_Missing_ReturnsFalse(t *testing.T) {
	s := newServices(t)

	deleted, err := s.categories.Delete(context.Background(), alice, "no-such-id")
	require.NoError(t, err)
	assert.False(t, deleted)
}

// =============================================================================
// LISTING
// =============================================================================

func TestCategories_List_SortedByName_UserScoped(t *testing.T) {
	s := newServices(t)

	mustCategory(t, s, alice, "Rent", false)
	mustCategory(t, s, alice, "Groceries", false)
	mustCategory(t, s, bob, "Salary", true)

	views, err := s.categories.List(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Groceries", views[0].Name)
	assert.Equal(t, "Rent", views[1].Name)
}
