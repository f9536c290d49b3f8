/*
store.go - Persistence contract for the ledger core

PURPOSE:
  Defines the interface between the domain services and the database.
  The core requires only per-entity CRUD with user-scoped predicates,
  atomic single-row writes, and row non-existence signaling. Multi-row
  sequences are NOT atomic at this level; the transfer orchestrator
  substitutes compensating deletes (see finance/transfers.go).

CONVENTIONS:
  - Every read and write predicate includes the acting UserID. A row
    belonging to another user behaves exactly like a missing row.
  - Get* methods return (nil, nil) on a lookup miss. They never return
    ErrNotFound; translating a miss into a failure is a service decision.
  - Delete* and Update* methods report (false, nil) when no row matched.
  - IDs, timestamps, and user stamps are assigned by the service layer;
    stores persist records as given.

IMPLEMENTATIONS:
  - ledger/store: in-memory, for tests and development
  - store/sqlite: production SQLite
*/
package ledger

import (
	"context"
	"time"
)

// =============================================================================
// FILTERS
// =============================================================================

// TransactionFilter selects transactions with conjunctive (AND) predicates.
// Zero values mean "no constraint". Results are ordered by Date descending;
// tie-break is unspecified.
type TransactionFilter struct {
	AccountID  AccountID
	CategoryID CategoryID
	Types      []TransactionType
	From       *time.Time
	To         *time.Time
}

// Matches reports whether tx satisfies every set predicate.
func (f TransactionFilter) Matches(tx Transaction) bool {
	if f.AccountID != "" && tx.AccountID != f.AccountID {
		return false
	}
	if f.CategoryID != "" && tx.CategoryID != f.CategoryID {
		return false
	}
	if len(f.Types) > 0 {
		ok := false
		for _, t := range f.Types {
			if tx.Type == t {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.From != nil && tx.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && tx.Date.After(*f.To) {
		return false
	}
	return true
}

// =============================================================================
// PER-ENTITY STORES
// =============================================================================

// AccountStore persists accounts.
type AccountStore interface {
	InsertAccount(ctx context.Context, account *Account) error
	GetAccount(ctx context.Context, userID UserID, id AccountID) (*Account, error)
	ListAccounts(ctx context.Context, userID UserID) ([]Account, error)
	// UpdateAccountName renames an account. Initial balance is immutable.
	UpdateAccountName(ctx context.Context, userID UserID, id AccountID, name string) (bool, error)
	DeleteAccount(ctx context.Context, userID UserID, id AccountID) (bool, error)
}

// CategoryStore persists categories.
type CategoryStore interface {
	InsertCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, userID UserID, id CategoryID) (*Category, error)
	// GetCategoryByName supports the per-user unique-name invariant.
	GetCategoryByName(ctx context.Context, userID UserID, name string) (*Category, error)
	ListCategories(ctx context.Context, userID UserID) ([]Category, error)
	UpdateCategoryName(ctx context.Context, userID UserID, id CategoryID, name string) (bool, error)
	DeleteCategory(ctx context.Context, userID UserID, id CategoryID) (bool, error)
}

// TransactionStore persists transactions.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, userID UserID, id TransactionID) (*Transaction, error)
	ListTransactions(ctx context.Context, userID UserID, filter TransactionFilter) ([]Transaction, error)
	// UpdateTransaction replaces the mutable fields (amount, category,
	// description, date) of an existing row. Type and account never change.
	UpdateTransaction(ctx context.Context, tx *Transaction) (bool, error)
	DeleteTransaction(ctx context.Context, userID UserID, id TransactionID) (bool, error)
	// DeleteTransactionsByAccount removes every transaction of one account.
	// Used when an account is deleted.
	DeleteTransactionsByAccount(ctx context.Context, userID UserID, accountID AccountID) error
	// LinkTransaction sets the related-transaction back-reference on one row.
	LinkTransaction(ctx context.Context, userID UserID, id, relatedID TransactionID) error
	// CountTransactionsByCategory supports the category-deletion guard.
	CountTransactionsByCategory(ctx context.Context, userID UserID, categoryID CategoryID) (int, error)
}

// BudgetStore persists monthly budgets.
type BudgetStore interface {
	InsertBudget(ctx context.Context, budget *Budget) error
	GetBudget(ctx context.Context, userID UserID, id BudgetID) (*Budget, error)
	// GetBudgetForMonth supports the (user, category, month) uniqueness check.
	GetBudgetForMonth(ctx context.Context, userID UserID, categoryID CategoryID, month time.Time) (*Budget, error)
	// ListBudgets returns budgets with Month in [from, to], ascending by Month.
	ListBudgets(ctx context.Context, userID UserID, from, to time.Time) ([]Budget, error)
	UpdateBudgetAmount(ctx context.Context, userID UserID, id BudgetID, plannedAmount int64) (bool, error)
	DeleteBudget(ctx context.Context, userID UserID, id BudgetID) (bool, error)
	// CountBudgetsByCategory supports the category-deletion guard.
	CountBudgetsByCategory(ctx context.Context, userID UserID, categoryID CategoryID) (int, error)
}

// Store is the full persistence surface the finance services consume.
type Store interface {
	AccountStore
	CategoryStore
	TransactionStore
	BudgetStore
}
