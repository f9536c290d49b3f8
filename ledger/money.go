/*
money.go - Major/minor unit conversion (Amount Codec)

PURPOSE:
  Every write path accepts user-facing decimal currency (major units) and
  stores int64 cents (minor units). Every read path converts back. Keeping
  integers at rest avoids floating-point drift in balances.

CONTRACT:
  - ToMinorUnits multiplies by 100 and rounds half-up at the 3rd decimal.
    Sub-cent precision is discarded on write; the round trip is lossy by
    design for inputs with more than 2 decimal places.
  - ToMajorUnits divides by 100 exactly.
  - For any x with at most 2 decimal places:
      ToMajorUnits(ToMinorUnits(x)) == x
*/
package ledger

import "github.com/shopspring/decimal"

var half = decimal.New(5, -1) // 0.5

// ToMinorUnits converts a major-unit amount to integer cents,
// rounding half-up (floor(x*100 + 0.5)).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Add(half).Floor().IntPart()
}

// ToMajorUnits converts integer cents back to a major-unit amount.
func ToMajorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
