package assert

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Predicates return booleans meant to be passed to Check or Asserter.That:
//
//	assert.Check(assert.PositiveDecimal(amount), "amount must be positive, got %s", amount)

// maxDecimalExponent bounds the exponents and scales accepted for amounts.
const maxDecimalExponent = 18

// Positive reports n > 0.
func Positive(n int64) bool {
	return n > 0
}

// NonNegative reports n >= 0.
func NonNegative(n int64) bool {
	return n >= 0
}

// NotZero reports n != 0.
func NotZero(n int64) bool {
	return n != 0
}

// InRange reports lo <= n <= hi. An inverted range holds nothing.
func InRange(n, lo, hi int64) bool {
	if lo > hi {
		return false
	}

	return n >= lo && n <= hi
}

// ValidUUID reports whether s parses as a UUID.
func ValidUUID(s string) bool {
	if s == "" {
		return false
	}

	_, err := uuid.Parse(s)

	return err == nil
}

// ValidAmount reports whether the decimal exponent is within [-18, 18].
func ValidAmount(amount decimal.Decimal) bool {
	exp := amount.Exponent()

	return exp >= -maxDecimalExponent && exp <= maxDecimalExponent
}

// ValidScale reports whether scale is within [0, 18].
func ValidScale(scale int) bool {
	return scale >= 0 && scale <= maxDecimalExponent
}

// PositiveDecimal reports amount > 0.
func PositiveDecimal(amount decimal.Decimal) bool {
	return amount.IsPositive()
}

// NonNegativeDecimal reports amount >= 0.
func NonNegativeDecimal(amount decimal.Decimal) bool {
	return !amount.IsNegative()
}
