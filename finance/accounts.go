/*
accounts.go - Account operations

PURPOSE:
  Account CRUD with derived balances. An account's current balance is
  never stored; every read folds the account's transaction history
  (ledger.ComputeBalance).

SEED TRANSACTION:
  Creating an account with a positive initial balance also records one
  revenue transaction ("Initial balance") carrying that amount. Balances
  are therefore folded from zero: the seed transaction IS the opening
  amount. Folding from InitialBalance as well would double-count it.

DELETE:
  Deleting an account removes its transactions first (application-level
  cascade), then the account row. See DESIGN.md for the open-question
  decision.
*/
package finance

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/finance-ledger/ledger"
)

// Accounts implements the account operation group.
type Accounts struct {
	store ledger.Store
	txs   *Transactions
	log   *zap.Logger
}

func NewAccounts(store ledger.Store, txs *Transactions, log *zap.Logger) *Accounts {
	if log == nil {
		log = zap.NewNop()
	}
	return &Accounts{store: store, txs: txs, log: log}
}

// Create adds an account and, when initialBalance > 0, seeds the opening
// revenue transaction.
func (s *Accounts) Create(ctx context.Context, userID ledger.UserID, name string, initialBalance decimal.Decimal) (*AccountView, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ledger.ValidationError{Code: "INVALID_NAME", Message: "account name is required"}
	}
	if initialBalance.IsNegative() {
		return nil, &ledger.ValidationError{Code: "NEGATIVE_INITIAL_BALANCE", Message: "initial balance must be non-negative"}
	}

	account := &ledger.Account{
		ID:             ledger.AccountID(uuid.NewString()),
		UserID:         userID,
		Name:           name,
		InitialBalance: ledger.ToMinorUnits(initialBalance),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.InsertAccount(ctx, account); err != nil {
		return nil, ledger.WrapStore("insert account", "account", err)
	}

	if initialBalance.IsPositive() {
		_, err := s.txs.Create(ctx, userID, CreateTransaction{
			AccountID:   account.ID,
			Amount:      initialBalance,
			Type:        ledger.TypeRevenue,
			Date:        time.Now().UTC(),
			Description: "Initial balance",
		})
		if err != nil {
			return nil, err
		}
	}

	s.log.Debug("account created",
		zap.String("account_id", string(account.ID)),
		zap.String("name", account.Name))

	initial := ledger.ToMajorUnits(account.InitialBalance)
	return &AccountView{
		ID:             account.ID,
		UserID:         account.UserID,
		Name:           account.Name,
		InitialBalance: initial,
		CurrentBalance: initial,
		CreatedAt:      account.CreatedAt,
	}, nil
}

// List returns the caller's accounts with balances batch-derived by the
// same fold used everywhere else.
func (s *Accounts) List(ctx context.Context, userID ledger.UserID) ([]AccountView, error) {
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, ledger.WrapStore("list accounts", "account", err)
	}

	views := make([]AccountView, len(accounts))
	for i, account := range accounts {
		view, err := s.toView(ctx, userID, account)
		if err != nil {
			return nil, err
		}
		views[i] = *view
	}
	return views, nil
}

// GetByID returns one account with its derived balance, or nil when absent.
func (s *Accounts) GetByID(ctx context.Context, userID ledger.UserID, id ledger.AccountID) (*AccountView, error) {
	account, err := s.store.GetAccount(ctx, userID, id)
	if err != nil {
		return nil, ledger.WrapStore("get account", "account", err)
	}
	if account == nil {
		return nil, nil
	}
	return s.toView(ctx, userID, *account)
}

// Update renames an account. The balance is immutable post-creation.
// Returns nil when absent.
func (s *Accounts) Update(ctx context.Context, userID ledger.UserID, id ledger.AccountID, name string) (*AccountView, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ledger.ValidationError{Code: "INVALID_NAME", Message: "account name is required"}
	}

	ok, err := s.store.UpdateAccountName(ctx, userID, id, name)
	if err != nil {
		return nil, ledger.WrapStore("update account", "account", err)
	}
	if !ok {
		return nil, nil
	}
	return s.GetByID(ctx, userID, id)
}

// Delete removes an account and its transactions. Returns false when absent.
func (s *Accounts) Delete(ctx context.Context, userID ledger.UserID, id ledger.AccountID) (bool, error) {
	account, err := s.store.GetAccount(ctx, userID, id)
	if err != nil {
		return false, ledger.WrapStore("get account", "account", err)
	}
	if account == nil {
		return false, nil
	}

	if err := s.store.DeleteTransactionsByAccount(ctx, userID, id); err != nil {
		return false, ledger.WrapStore("delete account transactions", "transaction", err)
	}
	ok, err := s.store.DeleteAccount(ctx, userID, id)
	if err != nil {
		return false, ledger.WrapStore("delete account", "account", err)
	}

	s.log.Debug("account deleted", zap.String("account_id", string(id)))
	return ok, nil
}

// CurrentBalance derives one account's balance, raising NotFound when the
// account is absent or not owned.
func (s *Accounts) CurrentBalance(ctx context.Context, userID ledger.UserID, id ledger.AccountID) (decimal.Decimal, error) {
	view, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return decimal.Zero, err
	}
	if view == nil {
		return decimal.Zero, &ledger.NotFoundError{Entity: "account", ID: string(id)}
	}
	return view.CurrentBalance, nil
}

func (s *Accounts) toView(ctx context.Context, userID ledger.UserID, account ledger.Account) (*AccountView, error) {
	txs, err := s.store.ListTransactions(ctx, userID, ledger.TransactionFilter{AccountID: account.ID})
	if err != nil {
		return nil, ledger.WrapStore("list account transactions", "transaction", err)
	}

	return &AccountView{
		ID:             account.ID,
		UserID:         account.UserID,
		Name:           account.Name,
		InitialBalance: ledger.ToMajorUnits(account.InitialBalance),
		// Folded from zero: the seed transaction carries the opening amount.
		CurrentBalance: ledger.ComputeBalance(decimal.Zero, txs),
		CreatedAt:      account.CreatedAt,
	}, nil
}
