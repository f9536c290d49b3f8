/*
Package ledger contains the core types and pure logic of the personal
finance ledger.

PURPOSE:
  This package is storage- and transport-agnostic. It defines the four
  entity records (Account, Category, Transaction, Budget), the minor-unit
  amount codec, balance derivation, the error taxonomy, and the Store
  contract that persistence implementations satisfy.

KEY CONCEPTS IN THIS FILE (types.go):
  - Minor units: All monetary fields are int64 cents. Callers exchange
    decimal major units at the service boundary; storage never sees a float.
  - Ownership: Every record carries the owning UserID. Nothing is shared.
  - Derived balance: Account has NO balance field beyond InitialBalance.
    Current balance is always recomputed from transaction history.
  - Transfer legs: A two-account transfer is a pair of transfer-type
    transactions linked through RelatedTransactionID, carrying
    opposite-signed amounts of equal magnitude.

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal at the boundary, integers at rest.
  2. Type safety: distinct ID types prevent mixing accounts and categories.
  3. Explicitness: optional references are empty strings, never sentinels
     the storage layer has to interpret.

SEE ALSO:
  - money.go: major/minor unit conversion
  - balance.go: balance derivation by folding
  - store.go: persistence contract
*/
package ledger

import (
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type (
	UserID        string
	AccountID     string
	CategoryID    string
	TransactionID string
	BudgetID      string
)

// =============================================================================
// TRANSACTION TYPE - closed tagged variant
// =============================================================================

// TransactionType distinguishes the three entry kinds. Behavior differs only
// in sign and validation rules, not in structure.
type TransactionType string

const (
	TypeExpense  TransactionType = "expense"
	TypeRevenue  TransactionType = "revenue"
	TypeTransfer TransactionType = "transfer"
)

// Valid reports whether t is one of the three known kinds.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeExpense, TypeRevenue, TypeTransfer:
		return true
	}
	return false
}

// =============================================================================
// ENTITY RECORDS - stored form, monetary values in minor units
// =============================================================================

// Account is a money container owned by exactly one user.
//
// INVARIANT: InitialBalance >= 0 and is immutable after creation.
// Current balance is never stored; see balance.go.
type Account struct {
	ID             AccountID
	UserID         UserID
	Name           string
	InitialBalance int64 // minor units
	CreatedAt      time.Time
}

// Category labels expense or revenue transactions.
//
// INVARIANTS:
//   - Name is unique within the owning user's category set.
//   - IsRevenue is immutable after creation.
type Category struct {
	ID        CategoryID
	UserID    UserID
	Name      string
	IsRevenue bool
	CreatedAt time.Time
}

// Transaction is a single ledger entry against one account.
//
// INVARIANTS:
//   - AccountID references an account owned by UserID.
//   - CategoryID, when set, references a category owned by UserID.
//   - Type == transfer implies CategoryID == "" and, for a two-legged
//     transfer, RelatedTransactionID points at the counterpart leg
//     (symmetric link once the transfer completes).
//   - A transfer's two legs carry opposite-signed amounts of equal magnitude.
//
// NON-ENFORCED: Deleting one leg of a linked transfer does not cascade to
// its partner. An orphaned leg with a dangling RelatedTransactionID can
// persist. This is deliberate; see DESIGN.md open questions.
type Transaction struct {
	ID                   TransactionID
	UserID               UserID
	AccountID            AccountID
	Amount               int64 // minor units, signed
	CategoryID           CategoryID
	Description          string
	Date                 time.Time
	Type                 TransactionType
	RelatedTransactionID TransactionID
	CreatedAt            time.Time
}

// Budget is a monthly spending plan for one category.
// Unique per (UserID, CategoryID, month); Month is always the first of month.
type Budget struct {
	ID            BudgetID
	UserID        UserID
	CategoryID    CategoryID
	Month         time.Time
	PlannedAmount int64 // minor units
	CreatedAt     time.Time
}
