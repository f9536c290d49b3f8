/*
categories.go - Category operations

PURPOSE:
  Category CRUD. Names are unique per user; IsRevenue is immutable after
  creation. Deletion is guarded at the application layer: a category
  referenced by any transaction or budget entry cannot be removed.
*/
package finance

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/finance-ledger/ledger"
)

// Categories implements the category operation group.
type Categories struct {
	store ledger.Store
	log   *zap.Logger
}

func NewCategories(store ledger.Store, log *zap.Logger) *Categories {
	if log == nil {
		log = zap.NewNop()
	}
	return &Categories{store: store, log: log}
}

// Create adds a category, rejecting duplicate names within the user's set.
func (s *Categories) Create(ctx context.Context, userID ledger.UserID, name string, isRevenue bool) (*CategoryView, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ledger.ValidationError{Code: "INVALID_NAME", Message: "category name is required"}
	}

	existing, err := s.store.GetCategoryByName(ctx, userID, name)
	if err != nil {
		return nil, ledger.WrapStore("get category by name", "category", err)
	}
	if existing != nil {
		return nil, &ledger.ValidationError{Code: "DUPLICATE_NAME", Message: "category with this name already exists"}
	}

	category := &ledger.Category{
		ID:        ledger.CategoryID(uuid.NewString()),
		UserID:    userID,
		Name:      name,
		IsRevenue: isRevenue,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertCategory(ctx, category); err != nil {
		return nil, ledger.WrapStore("insert category", "category", err)
	}

	s.log.Debug("category created",
		zap.String("category_id", string(category.ID)),
		zap.String("name", category.Name))

	view := newCategoryView(*category)
	return &view, nil
}

// List returns the caller's categories ordered by name.
func (s *Categories) List(ctx context.Context, userID ledger.UserID) ([]CategoryView, error) {
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, ledger.WrapStore("list categories", "category", err)
	}

	views := make([]CategoryView, len(categories))
	for i, category := range categories {
		views[i] = newCategoryView(category)
	}
	return views, nil
}

// GetByID returns one category, or nil when absent.
func (s *Categories) GetByID(ctx context.Context, userID ledger.UserID, id ledger.CategoryID) (*CategoryView, error) {
	category, err := s.store.GetCategory(ctx, userID, id)
	if err != nil {
		return nil, ledger.WrapStore("get category", "category", err)
	}
	if category == nil {
		return nil, nil
	}
	view := newCategoryView(*category)
	return &view, nil
}

// Update renames a category; the new name must not collide with another
// of the user's categories. IsRevenue never changes. Returns nil when absent.
func (s *Categories) Update(ctx context.Context, userID ledger.UserID, id ledger.CategoryID, name string) (*CategoryView, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ledger.ValidationError{Code: "INVALID_NAME", Message: "category name is required"}
	}

	existing, err := s.store.GetCategory(ctx, userID, id)
	if err != nil {
		return nil, ledger.WrapStore("get category", "category", err)
	}
	if existing == nil {
		return nil, nil
	}

	duplicate, err := s.store.GetCategoryByName(ctx, userID, name)
	if err != nil {
		return nil, ledger.WrapStore("get category by name", "category", err)
	}
	if duplicate != nil && duplicate.ID != id {
		return nil, &ledger.ValidationError{Code: "DUPLICATE_NAME", Message: "category with this name already exists"}
	}

	ok, err := s.store.UpdateCategoryName(ctx, userID, id, name)
	if err != nil {
		return nil, ledger.WrapStore("update category", "category", err)
	}
	if !ok {
		return nil, nil
	}
	return s.GetByID(ctx, userID, id)
}

// Delete removes a category unless any transaction or budget references it.
// Returns false when absent.
func (s *Categories) Delete(ctx context.Context, userID ledger.UserID, id ledger.CategoryID) (bool, error) {
	txCount, err := s.store.CountTransactionsByCategory(ctx, userID, id)
	if err != nil {
		return false, ledger.WrapStore("count transactions by category", "transaction", err)
	}
	if txCount > 0 {
		return false, &ledger.ConflictError{Code: "CATEGORY_IN_USE", Message: "cannot delete category that is used in transactions"}
	}

	budgetCount, err := s.store.CountBudgetsByCategory(ctx, userID, id)
	if err != nil {
		return false, ledger.WrapStore("count budgets by category", "budget", err)
	}
	if budgetCount > 0 {
		return false, &ledger.ConflictError{Code: "CATEGORY_IN_USE", Message: "cannot delete category that is used in budget entries"}
	}

	ok, err := s.store.DeleteCategory(ctx, userID, id)
	if err != nil {
		return false, ledger.WrapStore("delete category", "category", err)
	}
	return ok, nil
}
