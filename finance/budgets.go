/*
budgets.go - Budget operations

PURPOSE:
  Monthly spending plans per category. A budget month is always the
  first of the month; the (user, category, month) triple is unique.
  Budgets participate in the core only through the category-deletion
  guard, but carry the same ownership and minor-unit conventions.
*/
package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/finance-ledger/ledger"
)

// CreateBudget is the command for a new monthly budget entry.
type CreateBudget struct {
	CategoryID    ledger.CategoryID
	Month         time.Time // must be the first of a month
	PlannedAmount decimal.Decimal
}

// Budgets implements the budget operation group.
type Budgets struct {
	store ledger.Store
	owner *Ownership
	log   *zap.Logger
}

func NewBudgets(store ledger.Store, log *zap.Logger) *Budgets {
	if log == nil {
		log = zap.NewNop()
	}
	return &Budgets{store: store, owner: NewOwnership(store), log: log}
}

// Create adds a budget after validating category ownership, the
// first-of-month date, and the month's uniqueness for the category.
func (s *Budgets) Create(ctx context.Context, userID ledger.UserID, cmd CreateBudget) (*BudgetView, error) {
	if !cmd.PlannedAmount.IsPositive() {
		return nil, &ledger.ValidationError{Code: "INVALID_AMOUNT", Message: "planned amount must be positive"}
	}
	month, err := firstOfMonth(cmd.Month)
	if err != nil {
		return nil, err
	}

	if _, err := s.owner.RequireCategory(ctx, userID, cmd.CategoryID); err != nil {
		return nil, err
	}

	existing, err := s.store.GetBudgetForMonth(ctx, userID, cmd.CategoryID, month)
	if err != nil {
		return nil, ledger.WrapStore("get budget for month", "budget", err)
	}
	if existing != nil {
		return nil, &ledger.ConflictError{Code: "DUPLICATE_BUDGET", Message: "budget for this category and month already exists"}
	}

	budget := &ledger.Budget{
		ID:            ledger.BudgetID(uuid.NewString()),
		UserID:        userID,
		CategoryID:    cmd.CategoryID,
		Month:         month,
		PlannedAmount: ledger.ToMinorUnits(cmd.PlannedAmount),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.InsertBudget(ctx, budget); err != nil {
		return nil, ledger.WrapStore("insert budget", "budget", err)
	}

	s.log.Debug("budget created",
		zap.String("budget_id", string(budget.ID)),
		zap.String("category_id", string(budget.CategoryID)),
		zap.Time("month", budget.Month))

	view := newBudgetView(*budget)
	return &view, nil
}

// GetByID returns one budget, or nil when absent.
func (s *Budgets) GetByID(ctx context.Context, userID ledger.UserID, id ledger.BudgetID) (*BudgetView, error) {
	budget, err := s.store.GetBudget(ctx, userID, id)
	if err != nil {
		return nil, ledger.WrapStore("get budget", "budget", err)
	}
	if budget == nil {
		return nil, nil
	}
	view := newBudgetView(*budget)
	return &view, nil
}

// ListYear returns the caller's budgets for one calendar year, ascending
// by month.
func (s *Budgets) ListYear(ctx context.Context, userID ledger.UserID, year int) ([]BudgetView, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	budgets, err := s.store.ListBudgets(ctx, userID, from, to)
	if err != nil {
		return nil, ledger.WrapStore("list budgets", "budget", err)
	}

	views := make([]BudgetView, len(budgets))
	for i, budget := range budgets {
		views[i] = newBudgetView(budget)
	}
	return views, nil
}

// Update changes the planned amount. Raises NotFound when the budget is
// absent or not owned.
func (s *Budgets) Update(ctx context.Context, userID ledger.UserID, id ledger.BudgetID, plannedAmount decimal.Decimal) (*BudgetView, error) {
	if !plannedAmount.IsPositive() {
		return nil, &ledger.ValidationError{Code: "INVALID_AMOUNT", Message: "planned amount must be positive"}
	}

	ok, err := s.store.UpdateBudgetAmount(ctx, userID, id, ledger.ToMinorUnits(plannedAmount))
	if err != nil {
		return nil, ledger.WrapStore("update budget", "budget", err)
	}
	if !ok {
		return nil, &ledger.NotFoundError{Entity: "budget", ID: string(id)}
	}
	return s.GetByID(ctx, userID, id)
}

// Delete removes a budget. Returns false when absent.
func (s *Budgets) Delete(ctx context.Context, userID ledger.UserID, id ledger.BudgetID) (bool, error) {
	ok, err := s.store.DeleteBudget(ctx, userID, id)
	if err != nil {
		return false, ledger.WrapStore("delete budget", "budget", err)
	}
	return ok, nil
}

// firstOfMonth validates that t is midnight on the first of a month and
// normalizes it to UTC.
func firstOfMonth(t time.Time) (time.Time, error) {
	t = t.UTC()
	normalized := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	if !t.Equal(normalized) {
		return time.Time{}, &ledger.ValidationError{Code: "INVALID_BUDGET_DATE", Message: "budget date must be the first of a month"}
	}
	return normalized, nil
}
