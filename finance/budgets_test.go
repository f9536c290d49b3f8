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

func budgetCmd(categoryID ledger.CategoryID, year int, month time.Month, amount string) finance.CreateBudget {
	return finance.CreateBudget{
		CategoryID:    categoryID,
		Month:         time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
		PlannedAmount: decimal.RequireFromString(amount),
	}
}

// =============================================================================
// CREATION TESTS
// =============================================================================

func TestBudgets_Create(t *testing.T) {
	s := newServices(t)
	category := mustCategory(t, s, alice, "Groceries", false)

	view, err := s.budgets.Create(context.Background(), alice, budgetCmd(category.ID, 2026, time.March, "300.00"))
	require.NoError(t, err)
	assert.Equal(t, category.ID, view.CategoryID)
	assert.True(t, decimal.RequireFromString("300").Equal(view.PlannedAmount))
	assert.Equal(t, time.March, view.Month.Month())
}

func TestBudgets_Create_MidMonthDate_Rejected(t *testing.T) {
	// GIVEN: A budget date that is not the first of a month
	// WHEN: Creating the budget
	// THEN: Rejected with INVALID_BUDGET_DATE

	s := newServices(t)
	category := mustCategory(t, s, alice, "Groceries", false)

	_, err := s.budgets.Create(context.Background(), alice, finance.CreateBudget{
		CategoryID:    category.ID,
		Month:         time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
		PlannedAmount: decimal.RequireFromString("300"),
	})
	assert.True(t, ledger.IsValidation(err))

	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "INVALID_BUDGET_DATE", verr.Code)
}

func TestBudgets_Create_DuplicateMonth_Conflict(t *testing.T) {
	// GIVEN: A budget for Groceries in March
	// WHEN: Creating a second Groceries budget for March
	// THEN: Rejected with DUPLICATE_BUDGET

	s := newServices(t)
	ctx := context.Background()
	category := mustCategory(t, s, alice, "Groceries", false)

	_, err := s.budgets.Create(ctx, alice, budgetCmd(category.ID, 2026, time.March, "300"))
	require.NoError(t, err)

	_, err = s.budgets.Create(ctx, alice, budgetCmd(category.ID, 2026, time.March, "400"))
	assert.True(t, ledger.IsConflict(err))

	var cerr *ledger.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "DUPLICATE_BUDGET", cerr.Code)
}

func TestBudgets_Create_SameMonthDifferentCategories_Allowed(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	groceries := mustCategory(t, s, alice, "Groceries", false)
	rent := mustCategory(t, s, alice, "Rent", false)

	_, err := s.budgets.Create(ctx, alice, budgetCmd(groceries.ID, 2026, time.March, "300"))
	require.NoError(t, err)
	_, err = s.budgets.Create(ctx, alice, budgetCmd(rent.ID, 2026, time.March, "1200"))
	require.NoError(t, err)
}

func TestBudgets_Create_NonPositiveAmount_Rejected(t *testing.T) {
	s := newServices(t)
	category := mustCategory(t, s, alice, "Groceries", false)

	_, err := s.budgets.Create(context.Background(), alice, budgetCmd(category.ID, 2026, time.March, "0"))
	assert.True(t, ledger.IsValidation(err))
}

func TestBudgets_Create_ForeignCategory_NotFound(t *testing.T) {
	s := newServices(t)
	category := mustCategory(t, s, bob, "Bob's", false)

	_, err := s.budgets.Create(context.Background(), alice, budgetCmd(category.ID, 2026, time.March, "100"))
	assert.True(t, ledger.IsNotFound(err))
}

// =============================================================================
// READ / UPDATE / DELETE TESTS
// =============================================================================

func TestBudgets_ListYear(t *testing.T) {
	// GIVEN: Budgets in 2025 and 2026
	// WHEN: Listing 2026
	// THEN: Only the 2026 budgets come back, ascending by month

	s := newServices(t)
	ctx := context.Background()
	category := mustCategory(t, s, alice, "Groceries", false)

	_, err := s.budgets.Create(ctx, alice, budgetCmd(category.ID, 2025, time.December, "250"))
	require.NoError(t, err)
	_, err = s.budgets.Create(ctx, alice, budgetCmd(category.ID, 2026, time.June, "350"))
	require.NoError(t, err)
	_, err = s.budgets.Create(ctx, alice, budgetCmd(category.ID, 2026, time.February, "300"))
	require.NoError(t, err)

	views, err := s.budgets.ListYear(ctx, alice, 2026)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, time.February, views[0].Month.Month())
	assert.Equal(t, time.June, views[1].Month.Month())
}

func TestBudgets_Update_Amount(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	category := mustCategory(t, s, alice, "Groceries", false)

	created, err := s.budgets.Create(ctx, alice, budgetCmd(category.ID, 2026, time.March, "300"))
	require.NoError(t, err)

	got, err := s.budgets.Update(ctx, alice, created.ID, decimal.RequireFromString("450"))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("450").Equal(got.PlannedAmount))
}

func TestBudgets_Update_Missing_NotFound(t *testing.T) {
	s := newServices(t)

	_, err := s.budgets.Update(context.Background(), alice, "no-such-id", decimal.RequireFromString("100"))
	assert.True(t, ledger.IsNotFound(err))
}

func TestBudgets_Delete(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	category := mustCategory(t, s, alice, "Groceries", false)

	created, err := s.budgets.Create(ctx, alice, budgetCmd(category.ID, 2026, time.March, "300"))
	require.NoError(t, err)

	deleted, err := s.budgets.Delete(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.budgets.Delete(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
