// Package store provides ledger.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/finance-ledger/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory is a mutex-guarded in-memory ledger.Store. Every read filters by
// UserID so cross-user rows behave like missing rows, matching the
// production store.
type Memory struct {
	mu           sync.RWMutex
	accounts     map[ledger.AccountID]ledger.Account
	categories   map[ledger.CategoryID]ledger.Category
	transactions map[ledger.TransactionID]ledger.Transaction
	budgets      map[ledger.BudgetID]ledger.Budget

	// Failure injection for rollback tests. When set, the hook runs before
	// the matching operation and its error, if any, is returned instead.
	BeforeInsertTransaction func(tx *ledger.Transaction) error
	BeforeLinkTransaction   func(id, relatedID ledger.TransactionID) error
	BeforeDeleteTransaction func(id ledger.TransactionID) error
}

func NewMemory() *Memory {
	return &Memory{
		accounts:     make(map[ledger.AccountID]ledger.Account),
		categories:   make(map[ledger.CategoryID]ledger.Category),
		transactions: make(map[ledger.TransactionID]ledger.Transaction),
		budgets:      make(map[ledger.BudgetID]ledger.Budget),
	}
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (m *Memory) InsertAccount(_ context.Context, account *ledger.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = *account
	return nil
}

func (m *Memory) GetAccount(_ context.Context, userID ledger.UserID, id ledger.AccountID) (*ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[id]
	if !ok || account.UserID != userID {
		return nil, nil
	}
	clone := account
	return &clone, nil
}

func (m *Memory) ListAccounts(_ context.Context, userID ledger.UserID) ([]ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Account
	for _, account := range m.accounts {
		if account.UserID == userID {
			result = append(result, account)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *Memory) UpdateAccountName(_ context.Context, userID ledger.UserID, id ledger.AccountID, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok || account.UserID != userID {
		return false, nil
	}
	account.Name = name
	m.accounts[id] = account
	return true, nil
}

func (m *Memory) DeleteAccount(_ context.Context, userID ledger.UserID, id ledger.AccountID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok || account.UserID != userID {
		return false, nil
	}
	delete(m.accounts, id)
	return true, nil
}

// =============================================================================
// CATEGORIES
// =============================================================================

func (m *Memory) InsertCategory(_ context.Context, category *ledger.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[category.ID] = *category
	return nil
}

func (m *Memory) GetCategory(_ context.Context, userID ledger.UserID, id ledger.CategoryID) (*ledger.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	category, ok := m.categories[id]
	if !ok || category.UserID != userID {
		return nil, nil
	}
	clone := category
	return &clone, nil
}

func (m *Memory) GetCategoryByName(_ context.Context, userID ledger.UserID, name string) (*ledger.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, category := range m.categories {
		if category.UserID == userID && category.Name == name {
			clone := category
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListCategories(_ context.Context, userID ledger.UserID) ([]ledger.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Category
	for _, category := range m.categories {
		if category.UserID == userID {
			result = append(result, category)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) UpdateCategoryName(_ context.Context, userID ledger.UserID, id ledger.CategoryID, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	category, ok := m.categories[id]
	if !ok || category.UserID != userID {
		return false, nil
	}
	category.Name = name
	m.categories[id] = category
	return true, nil
}

func (m *Memory) DeleteCategory(_ context.Context, userID ledger.UserID, id ledger.CategoryID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	category, ok := m.categories[id]
	if !ok || category.UserID != userID {
		return false, nil
	}
	delete(m.categories, id)
	return true, nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func (m *Memory) InsertTransaction(_ context.Context, tx *ledger.Transaction) error {
	if m.BeforeInsertTransaction != nil {
		if err := m.BeforeInsertTransaction(tx); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[tx.ID] = *tx
	return nil
}

func (m *Memory) GetTransaction(_ context.Context, userID ledger.UserID, id ledger.TransactionID) (*ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, ok := m.transactions[id]
	if !ok || tx.UserID != userID {
		return nil, nil
	}
	clone := tx
	return &clone, nil
}

func (m *Memory) ListTransactions(_ context.Context, userID ledger.UserID, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Transaction
	for _, tx := range m.transactions {
		if tx.UserID == userID && filter.Matches(tx) {
			result = append(result, tx)
		}
	}
	// Date descending, per the listing contract.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}

func (m *Memory) UpdateTransaction(_ context.Context, tx *ledger.Transaction) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.transactions[tx.ID]
	if !ok || existing.UserID != tx.UserID {
		return false, nil
	}
	existing.Amount = tx.Amount
	existing.CategoryID = tx.CategoryID
	existing.Description = tx.Description
	existing.Date = tx.Date
	m.transactions[tx.ID] = existing
	return true, nil
}

func (m *Memory) DeleteTransaction(_ context.Context, userID ledger.UserID, id ledger.TransactionID) (bool, error) {
	if m.BeforeDeleteTransaction != nil {
		if err := m.BeforeDeleteTransaction(id); err != nil {
			return false, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[id]
	if !ok || tx.UserID != userID {
		return false, nil
	}
	delete(m.transactions, id)
	return true, nil
}

func (m *Memory) DeleteTransactionsByAccount(_ context.Context, userID ledger.UserID, accountID ledger.AccountID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, tx := range m.transactions {
		if tx.UserID == userID && tx.AccountID == accountID {
			delete(m.transactions, id)
		}
	}
	return nil
}

func (m *Memory) LinkTransaction(_ context.Context, userID ledger.UserID, id, relatedID ledger.TransactionID) error {
	if m.BeforeLinkTransaction != nil {
		if err := m.BeforeLinkTransaction(id, relatedID); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[id]
	if !ok || tx.UserID != userID {
		return nil
	}
	tx.RelatedTransactionID = relatedID
	m.transactions[id] = tx
	return nil
}

func (m *Memory) CountTransactionsByCategory(_ context.Context, userID ledger.UserID, categoryID ledger.CategoryID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, tx := range m.transactions {
		if tx.UserID == userID && tx.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

// =============================================================================
// BUDGETS
// =============================================================================

func (m *Memory) InsertBudget(_ context.Context, budget *ledger.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgets[budget.ID] = *budget
	return nil
}

func (m *Memory) GetBudget(_ context.Context, userID ledger.UserID, id ledger.BudgetID) (*ledger.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	budget, ok := m.budgets[id]
	if !ok || budget.UserID != userID {
		return nil, nil
	}
	clone := budget
	return &clone, nil
}

func (m *Memory) GetBudgetForMonth(_ context.Context, userID ledger.UserID, categoryID ledger.CategoryID, month time.Time) (*ledger.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, budget := range m.budgets {
		if budget.UserID == userID && budget.CategoryID == categoryID && budget.Month.Equal(month) {
			clone := budget
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListBudgets(_ context.Context, userID ledger.UserID, from, to time.Time) ([]ledger.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Budget
	for _, budget := range m.budgets {
		if budget.UserID != userID {
			continue
		}
		if budget.Month.Before(from) || budget.Month.After(to) {
			continue
		}
		result = append(result, budget)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month.Before(result[j].Month) })
	return result, nil
}

func (m *Memory) UpdateBudgetAmount(_ context.Context, userID ledger.UserID, id ledger.BudgetID, plannedAmount int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	budget, ok := m.budgets[id]
	if !ok || budget.UserID != userID {
		return false, nil
	}
	budget.PlannedAmount = plannedAmount
	m.budgets[id] = budget
	return true, nil
}

func (m *Memory) DeleteBudget(_ context.Context, userID ledger.UserID, id ledger.BudgetID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	budget, ok := m.budgets[id]
	if !ok || budget.UserID != userID {
		return false, nil
	}
	delete(m.budgets, id)
	return true, nil
}

func (m *Memory) CountBudgetsByCategory(_ context.Context, userID ledger.UserID, categoryID ledger.CategoryID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, budget := range m.budgets {
		if budget.UserID == userID && budget.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}
