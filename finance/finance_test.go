package finance_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/warp/finance-ledger/finance"
	"github.com/warp/finance-ledger/ledger"
	"github.com/warp/finance-ledger/ledger/store"
)

// =============================================================================
// SHARED TEST SETUP
// =============================================================================

const (
	alice = ledger.UserID("user-alice")
	bob   = ledger.UserID("user-bob")
)

type services struct {
	store        *store.Memory
	accounts     *finance.Accounts
	categories   *finance.Categories
	transactions *finance.Transactions
	transfers    *finance.Transfers
	budgets      *finance.Budgets
	reports      *finance.Reports
}

func newServices(t *testing.T) *services {
	t.Helper()
	mem := store.NewMemory()
	transactions := finance.NewTransactions(mem, nil)
	accounts := finance.NewAccounts(mem, transactions, nil)
	return &services{
		store:        mem,
		accounts:     accounts,
		categories:   finance.NewCategories(mem, nil),
		transactions: transactions,
		transfers:    finance.NewTransfers(mem, nil),
		budgets:      finance.NewBudgets(mem, nil),
		reports:      finance.NewReports(mem, accounts),
	}
}

func mustAccount(t *testing.T, s *services, user ledger.UserID, name, balance string) *finance.AccountView {
	t.Helper()
	view, err := s.accounts.Create(context.Background(), user, name, decimal.RequireFromString(balance))
	require.NoError(t, err)
	return view
}

func mustCategory(t *testing.T, s *services, user ledger.UserID, name string, isRevenue bool) *finance.CategoryView {
	t.Helper()
	view, err := s.categories.Create(context.Background(), user, name, isRevenue)
	require.NoError(t, err)
	return view
}

func mustExpense(t *testing.T, s *services, user ledger.UserID, accountID ledger.AccountID, categoryID ledger.CategoryID, amount string, date time.Time) *finance.TransactionView {
	t.Helper()
	view, err := s.transactions.Create(context.Background(), user, finance.CreateTransaction{
		AccountID:  accountID,
		Amount:     decimal.RequireFromString(amount),
		Type:       ledger.TypeExpense,
		Date:       date,
		CategoryID: categoryID,
	})
	require.NoError(t, err)
	return view
}

func newRevenue(accountID ledger.AccountID, amount string) finance.CreateTransaction {
	return finance.CreateTransaction{
		AccountID: accountID,
		Amount:    decimal.RequireFromString(amount),
		Type:      ledger.TypeRevenue,
		Date:      jan15(),
	}
}

func jan15() time.Time {
	return time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
}
