package odds

import (
	"math/big"
	"sync"
)

// DefaultBase is the default fixed-point denominator for odds.
// Odds of 1200 with base 1000 read as a 1.2x payout multiplier.
const DefaultBase int64 = 1000

// FeeDenominator converts basis points to a fraction.
const FeeDenominator int64 = 10_000

// int128Pool holds big.Ints for intermediate products that may exceed int64.
var int128Pool = &sync.Pool{
	New: func() interface{} {
		return new(big.Int)
	},
}

// MulDiv computes a * b / den using 128-bit intermediates, truncating
// toward zero. den must be > 0.
func MulDiv(a, b, den int64) int64 {
	prod := int128Pool.Get().(*big.Int)
	prod.Mul(big.NewInt(a), big.NewInt(b))
	prod.Quo(prod, big.NewInt(den))

	result := prod.Int64()
	prod.SetInt64(0)
	int128Pool.Put(prod)
	return result
}

// Valid reports whether o is a well-formed odds value for the given base,
// i.e. a multiplier of at least 1.0.
func Valid(o, base int64) bool {
	return o >= base
}

// Liability is the amount a lay bettor must escrow to cover a matched back
// stake of `amount` at the given odds: amount * (odds - base) / base.
func Liability(amount, o, base int64) int64 {
	return MulDiv(amount, o-base, base)
}

// BackPayout is the gross amount owed to a winning back position:
// stake returned plus profit, amount * odds / base.
func BackPayout(amount, o, base int64) int64 {
	return MulDiv(amount, o, base)
}

// Fee computes the platform fee on a payout component at the given rate
// in basis points. Truncates toward zero; dust stays with the bettor.
func Fee(amount, bps int64) int64 {
	return MulDiv(amount, bps, FeeDenominator)
}
