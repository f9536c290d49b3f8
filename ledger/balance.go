/*
balance.go - Balance derivation by folding transaction history

PURPOSE:
  An account's current balance is never stored. It is derived by folding
  the account's transactions over a starting amount. This is the central
  guarantee that the balance always reflects the full history with no
  drift: there is no mutable balance field to get out of sync.

SIGN RULES:
  expense   -> subtract the amount
  revenue   -> add the amount
  transfer  -> add the signed amount directly (an outgoing leg is stored
               negative, an incoming leg positive)

  The fold is commutative and associative over addition, so ordering of
  the transaction list does not affect the result. No ordering guarantee
  is required or assumed.

COST:
  O(n) per read over the account's transactions. Acceptable at personal
  finance volumes; an incremental materialized balance would be an
  optimization, not a contract change.
*/
package ledger

import "github.com/shopspring/decimal"

// ComputeBalance folds txs over initial and returns the resulting balance
// in major units. An empty or nil list yields exactly initial.
func ComputeBalance(initial decimal.Decimal, txs []Transaction) decimal.Decimal {
	balance := initial
	for _, tx := range txs {
		amount := ToMajorUnits(tx.Amount)
		if tx.Type == TypeExpense {
			balance = balance.Sub(amount)
		} else {
			balance = balance.Add(amount)
		}
	}
	return balance
}
