package ring

import (
	"math/big"
	"math/bits"
)

// GenBRedConstant computes the constant for the BRed algorithm.
// Returns ⌊2^128/q⌋ as (hi, lo) 64-bit words.
func GenBRedConstant(q uint64) (constant [2]uint64) {
	bigR := new(big.Int).Lsh(new(big.Int).SetUint64(1), 128)
	bigR.Quo(bigR, new(big.Int).SetUint64(q))

	constant[0] = new(big.Int).Rsh(bigR, 64).Uint64()
	constant[1] = bigR.Uint64()

	return
}

// BRed computes x*y mod q in constant time.
// Expects q to be at most 63 bits.
func BRed(x, y, q uint64, bredconstant [2]uint64) uint64 {
	return CRed(BRedLazy(x, y, q, bredconstant), q)
}

// BRedLazy computes x*y mod q in constant time.
// The result is between 0 and 2*q-1.
func BRedLazy(x, y, q uint64, bredconstant [2]uint64) (r uint64) {
	ahi, alo := bits.Mul64(x, y)
	return BRed128Lazy(ahi, alo, q, bredconstant)
}

// BRed128 computes a mod q in constant time, where a is a 128-bit
// value given as (ahi, alo) 64-bit words.
// Expects q to be at most 63 bits.
func BRed128(ahi, alo, q uint64, bredconstant [2]uint64) uint64 {
	return CRed(BRed128Lazy(ahi, alo, q, bredconstant), q)
}

// BRed128Lazy computes a mod q in constant time, where a is a 128-bit
// value given as (ahi, alo) 64-bit words.
// The result is between 0 and 2*q-1.
func BRed128Lazy(ahi, alo, q uint64, bredconstant [2]uint64) (r uint64) {

	var lhi, mhi, mlo, s0, s1, carry uint64

	// (alo*ulo)>>64

	lhi, _ = bits.Mul64(alo, bredconstant[1])

	// ((ahi*ulo + alo*uhi) + (alo*ulo))>>64

	mhi, mlo = bits.Mul64(alo, bredconstant[0])

	s0, carry = bits.Add64(mlo, lhi, 0)

	s1 = mhi + carry

	mhi, mlo = bits.Mul64(ahi, bredconstant[1])

	_, carry = bits.Add64(mlo, s0, 0)

	lhi = mhi + carry

	// (ahi*uhi) + (((ahi*ulo + alo*uhi) + (alo*ulo))>>64)

	s0 = ahi*bredconstant[0] + s1 + lhi

	return alo - s0*q
}

// BRedAdd computes a mod q in constant time.
// Expects q to be at most 63 bits.
func BRedAdd(a, q uint64, bredconstant [2]uint64) uint64 {
	return CRed(BRedAddLazy(a, q, bredconstant), q)
}

// BRedAddLazy computes a mod q in constant time.
// The result is between 0 and 2*q-1.
func BRedAddLazy(a, q uint64, bredconstant [2]uint64) uint64 {
	s0, _ := bits.Mul64(a, bredconstant[0])
	return a - s0*q
}

// CRed returns a mod q in constant time, where a is between 0 and 2*q-1.
// Expects q to be at most 63 bits.
func CRed(a, q uint64) uint64 {
	a -= q
	return a + (q & uint64(int64(a)>>63))
}

// AddMod returns (a+b) mod q in constant time, where a and b are
// between 0 and q-1. Expects q to be at most 63 bits.
func AddMod(a, b, q uint64) uint64 {
	return CRed(a+b, q)
}

// InvMod computes a^-1 mod q using the extended Euclidean algorithm.
// It runs in variable time and must only be called on public inputs.
func InvMod(a, q uint64) (uint64, error) {
	inv := new(big.Int).ModInverse(new(big.Int).SetUint64(a), new(big.Int).SetUint64(q))
	if inv == nil {
		return 0, ErrNotInvertible
	}
	return inv.Uint64(), nil
}

// ModExp performs the modular exponentiation x^e mod q in variable time,
// x and q are required to be at most 63 bits to avoid an overflow.
func ModExp(x, e, q uint64) (result uint64) {
	bredconstant := GenBRedConstant(q)
	result = 1
	for i := e; i > 0; i >>= 1 {
		if i&1 == 1 {
			result = BRed(result, x, q, bredconstant)
		}
		x = BRed(x, x, q, bredconstant)
	}
	return result
}
