/*
views.go - Caller-facing result shapes

PURPOSE:
  The services return plain data results with monetary values converted
  back to decimal major units. Stored records (ledger package) keep int64
  minor units; views are the only shapes that cross the core boundary.
*/
package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/finance-ledger/ledger"
)

// AccountView is an account with its derived current balance.
type AccountView struct {
	ID             ledger.AccountID
	UserID         ledger.UserID
	Name           string
	InitialBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	CreatedAt      time.Time
}

// TransactionView is a transaction with its amount in major units.
// Related carries the counterpart leg of a linked transfer when one exists
// (populated one level deep, never recursively).
type TransactionView struct {
	ID                   ledger.TransactionID
	UserID               ledger.UserID
	AccountID            ledger.AccountID
	Amount               decimal.Decimal
	CategoryID           ledger.CategoryID
	Description          string
	Date                 time.Time
	Type                 ledger.TransactionType
	RelatedTransactionID ledger.TransactionID
	Related              *TransactionView
	CreatedAt            time.Time
}

// CategoryView mirrors the stored category; categories carry no money.
type CategoryView struct {
	ID        ledger.CategoryID
	UserID    ledger.UserID
	Name      string
	IsRevenue bool
	CreatedAt time.Time
}

// BudgetView is a budget with its planned amount in major units.
type BudgetView struct {
	ID            ledger.BudgetID
	UserID        ledger.UserID
	CategoryID    ledger.CategoryID
	Month         time.Time
	PlannedAmount decimal.Decimal
	CreatedAt     time.Time
}

func newTransactionView(tx ledger.Transaction) TransactionView {
	return TransactionView{
		ID:                   tx.ID,
		UserID:               tx.UserID,
		AccountID:            tx.AccountID,
		Amount:               ledger.ToMajorUnits(tx.Amount),
		CategoryID:           tx.CategoryID,
		Description:          tx.Description,
		Date:                 tx.Date,
		Type:                 tx.Type,
		RelatedTransactionID: tx.RelatedTransactionID,
		CreatedAt:            tx.CreatedAt,
	}
}

func newCategoryView(category ledger.Category) CategoryView {
	return CategoryView{
		ID:        category.ID,
		UserID:    category.UserID,
		Name:      category.Name,
		IsRevenue: category.IsRevenue,
		CreatedAt: category.CreatedAt,
	}
}

func newBudgetView(budget ledger.Budget) BudgetView {
	return BudgetView{
		ID:            budget.ID,
		UserID:        budget.UserID,
		CategoryID:    budget.CategoryID,
		Month:         budget.Month,
		PlannedAmount: ledger.ToMajorUnits(budget.PlannedAmount),
		CreatedAt:     budget.CreatedAt,
	}
}
