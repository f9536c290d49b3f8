/*
Package finance implements the finance tracker's operation groups on top
of the ledger core: accounts, categories, transactions, transfers,
budgets, and reports.

transactions.go - Transaction Engine

PURPOSE:
  Creates, reads, updates, and deletes single-entry transactions
  (expense/revenue), enforcing ownership and category existence before
  every write.

RULES:
  - user_id is always stamped from the caller, never trusted from input.
  - Amounts arrive in decimal major units and are encoded to minor units
    on the way in, decoded on the way out.
  - Lookup misses are quiet: GetByID/Update return nil, Delete returns
    false. Only nested validation (referenced account/category missing)
    raises a NotFound failure.
  - Deleting one leg of a linked transfer does NOT cascade to its partner.
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

// CreateTransaction is the command for a single-entry transaction.
// Transfers are created by the Transfers orchestrator, never here.
type CreateTransaction struct {
	AccountID   ledger.AccountID
	Amount      decimal.Decimal // major units, must be positive
	Type        ledger.TransactionType
	Date        time.Time
	CategoryID  ledger.CategoryID // optional
	Description string            // optional
}

// UpdateTransaction is a partial update; nil fields are left unchanged.
// Type and account can never change.
type UpdateTransaction struct {
	Amount      *decimal.Decimal
	CategoryID  *ledger.CategoryID // set to empty CategoryID to clear
	Description *string
	Date        *time.Time
}

// Transactions is the transaction engine.
type Transactions struct {
	store ledger.Store
	owner *Ownership
	log   *zap.Logger
}

func NewTransactions(store ledger.Store, log *zap.Logger) *Transactions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Transactions{store: store, owner: NewOwnership(store), log: log}
}

// Create validates ownership of the referenced account (and category, if
// given), encodes the amount to minor units, and writes one row.
func (s *Transactions) Create(ctx context.Context, userID ledger.UserID, cmd CreateTransaction) (*TransactionView, error) {
	if cmd.Type != ledger.TypeExpense && cmd.Type != ledger.TypeRevenue {
		return nil, &ledger.ValidationError{Code: "INVALID_TYPE", Message: "transaction type must be expense or revenue"}
	}
	if !cmd.Amount.IsPositive() {
		return nil, &ledger.ValidationError{Code: "INVALID_AMOUNT", Message: "amount must be greater than zero"}
	}

	if _, err := s.owner.RequireAccount(ctx, userID, cmd.AccountID); err != nil {
		return nil, err
	}
	if cmd.CategoryID != "" {
		if _, err := s.owner.RequireCategory(ctx, userID, cmd.CategoryID); err != nil {
			return nil, err
		}
	}

	tx := &ledger.Transaction{
		ID:          ledger.TransactionID(uuid.NewString()),
		UserID:      userID,
		AccountID:   cmd.AccountID,
		Amount:      ledger.ToMinorUnits(cmd.Amount),
		CategoryID:  cmd.CategoryID,
		Description: cmd.Description,
		Date:        cmd.Date,
		Type:        cmd.Type,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.InsertTransaction(ctx, tx); err != nil {
		return nil, ledger.WrapStore("insert transaction", "transaction", err)
	}

	s.log.Debug("transaction created",
		zap.String("transaction_id", string(tx.ID)),
		zap.String("account_id", string(tx.AccountID)),
		zap.String("type", string(tx.Type)))

	view := newTransactionView(*tx)
	return &view, nil
}

// List returns the caller's transactions matching the filter, ordered by
// date descending. Linked transfer legs are embedded one level deep.
func (s *Transactions) List(ctx context.Context, userID ledger.UserID, filter ledger.TransactionFilter) ([]TransactionView, error) {
	txs, err := s.store.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, ledger.WrapStore("list transactions", "transaction", err)
	}

	views := make([]TransactionView, len(txs))
	for i, tx := range txs {
		views[i] = newTransactionView(tx)
		if err := s.attachRelated(ctx, userID, &views[i]); err != nil {
			return nil, err
		}
	}
	return views, nil
}

// GetByID returns the transaction scoped to userID, or nil when absent.
func (s *Transactions) GetByID(ctx context.Context, userID ledger.UserID, id ledger.TransactionID) (*TransactionView, error) {
	tx, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, ledger.WrapStore("get transaction", "transaction", err)
	}
	if tx == nil {
		return nil, nil
	}

	view := newTransactionView(*tx)
	if err := s.attachRelated(ctx, userID, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Update changes only the supplied fields. Returns nil when the
// transaction does not exist or is not owned by userID.
func (s *Transactions) Update(ctx context.Context, userID ledger.UserID, id ledger.TransactionID, cmd UpdateTransaction) (*TransactionView, error) {
	existing, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, ledger.WrapStore("get transaction", "transaction", err)
	}
	if existing == nil {
		return nil, nil
	}

	if cmd.Amount != nil {
		if !cmd.Amount.IsPositive() {
			return nil, &ledger.ValidationError{Code: "INVALID_AMOUNT", Message: "amount must be greater than zero"}
		}
		existing.Amount = ledger.ToMinorUnits(*cmd.Amount)
	}
	if cmd.CategoryID != nil {
		if *cmd.CategoryID != "" {
			if _, err := s.owner.RequireCategory(ctx, userID, *cmd.CategoryID); err != nil {
				return nil, err
			}
		}
		existing.CategoryID = *cmd.CategoryID
	}
	if cmd.Description != nil {
		existing.Description = *cmd.Description
	}
	if cmd.Date != nil {
		existing.Date = *cmd.Date
	}

	ok, err := s.store.UpdateTransaction(ctx, existing)
	if err != nil {
		return nil, ledger.WrapStore("update transaction", "transaction", err)
	}
	if !ok {
		return nil, nil
	}

	view := newTransactionView(*existing)
	if err := s.attachRelated(ctx, userID, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Delete removes one transaction. Returns false when absent. A linked
// partner leg is left in place, dangling reference included.
func (s *Transactions) Delete(ctx context.Context, userID ledger.UserID, id ledger.TransactionID) (bool, error) {
	ok, err := s.store.DeleteTransaction(ctx, userID, id)
	if err != nil {
		return false, ledger.WrapStore("delete transaction", "transaction", err)
	}
	return ok, nil
}

// attachRelated loads the counterpart leg referenced by view, if any.
// A dangling reference (partner already deleted) is left nil.
func (s *Transactions) attachRelated(ctx context.Context, userID ledger.UserID, view *TransactionView) error {
	if view.RelatedTransactionID == "" {
		return nil
	}
	related, err := s.store.GetTransaction(ctx, userID, view.RelatedTransactionID)
	if err != nil {
		return ledger.WrapStore("get related transaction", "transaction", err)
	}
	if related != nil {
		rv := newTransactionView(*related)
		view.Related = &rv
	}
	return nil
}
