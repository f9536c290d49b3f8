/*
ownership.go - Ownership validation (referential guard)

PURPOSE:
  Confirms that a referenced account or category belongs to the acting
  user before any mutation proceeds. There is deliberately ONE failure
  mode: "not found or not owned". Distinguishing "exists but belongs to
  someone else" from "does not exist" would leak existence of other
  users' rows.

  Every write path that references an account or category calls these
  synchronously before issuing the write.
*/
package finance

import (
	"context"

	"github.com/warp/finance-ledger/ledger"
)

// Ownership validates that referenced entities belong to the acting user.
type Ownership struct {
	store ledger.Store
}

func NewOwnership(store ledger.Store) *Ownership {
	return &Ownership{store: store}
}

// RequireAccount returns the account if it exists and is owned by userID,
// otherwise a NotFoundError.
func (o *Ownership) RequireAccount(ctx context.Context, userID ledger.UserID, id ledger.AccountID) (*ledger.Account, error) {
	account, err := o.store.GetAccount(ctx, userID, id)
	if err != nil {
		return nil, ledger.WrapStore("get account", "account", err)
	}
	if account == nil {
		return nil, &ledger.NotFoundError{Entity: "account", ID: string(id)}
	}
	return account, nil
}

// RequireCategory returns the category if it exists and is owned by userID,
// otherwise a NotFoundError.
func (o *Ownership) RequireCategory(ctx context.Context, userID ledger.UserID, id ledger.CategoryID) (*ledger.Category, error) {
	category, err := o.store.GetCategory(ctx, userID, id)
	if err != nil {
		return nil, ledger.WrapStore("get category", "category", err)
	}
	if category == nil {
		return nil, &ledger.NotFoundError{Entity: "category", ID: string(id)}
	}
	return category, nil
}
