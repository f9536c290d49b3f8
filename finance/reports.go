/*
reports.go - Derived read models

PURPOSE:
  Read-only aggregations the dashboard consumes: the monthly expense
  breakdown grouped by category, and the total balance across all of a
  user's accounts. Both are derived on demand; nothing here writes.
*/
package finance

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/finance-ledger/ledger"
)

// CategoryTotal is one row of the monthly expense breakdown.
// Category is empty for uncategorized expenses.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal // major units
}

// Reports implements the derived read models.
type Reports struct {
	store    ledger.Store
	accounts *Accounts
}

func NewReports(store ledger.Store, accounts *Accounts) *Reports {
	return &Reports{store: store, accounts: accounts}
}

// CategoryBreakdown sums the month's expense transactions per category
// name, sorted by name for stable output.
func (s *Reports) CategoryBreakdown(ctx context.Context, userID ledger.UserID, year int, month time.Month) ([]CategoryTotal, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)

	txs, err := s.store.ListTransactions(ctx, userID, ledger.TransactionFilter{
		Types: []ledger.TransactionType{ledger.TypeExpense},
		From:  &from,
		To:    &to,
	})
	if err != nil {
		return nil, ledger.WrapStore("list transactions", "transaction", err)
	}

	names := make(map[ledger.CategoryID]string)
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, ledger.WrapStore("list categories", "category", err)
	}
	for _, category := range categories {
		names[category.ID] = category.Name
	}

	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		name := names[tx.CategoryID] // "" for uncategorized or dangling
		totals[name] = totals[name].Add(ledger.ToMajorUnits(tx.Amount))
	}

	breakdown := make([]CategoryTotal, 0, len(totals))
	for name, total := range totals {
		breakdown = append(breakdown, CategoryTotal{Category: name, Total: total})
	}
	sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].Category < breakdown[j].Category })
	return breakdown, nil
}

// TotalBalance sums the derived balances of every account the user owns.
func (s *Reports) TotalBalance(ctx context.Context, userID ledger.UserID) (decimal.Decimal, error) {
	views, err := s.accounts.List(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, view := range views {
		total = total.Add(view.CurrentBalance)
	}
	return total, nil
}
