package ring

import (
	"math/big"
	"math/bits"
)

// The widening tower: fixed-width unsigned integer types of 128 to 2048
// bits, stored as little-endian 64-bit limbs. They are the accumulator
// types accepted by Compose; the tower is closed, widening multiplication
// of two W-bit values always fits in 2W bits.
type (
	// Uint128 is a 128-bit unsigned integer.
	Uint128 [2]uint64
	// Uint256 is a 256-bit unsigned integer.
	Uint256 [4]uint64
	// Uint512 is a 512-bit unsigned integer.
	Uint512 [8]uint64
	// Uint1024 is a 1024-bit unsigned integer.
	Uint1024 [16]uint64
	// Uint2048 is a 2048-bit unsigned integer.
	Uint2048 [32]uint64
)

// maxProductLimbs is the limb count of the widest tower type.
const maxProductLimbs = 32

// WideUint is the constraint satisfied by the types of the widening tower.
// All arithmetic methods are constant time in the operand values.
type WideUint[T any] interface {
	FromUint64(uint64) T
	fromLimbs([]uint64) T
	MulWrap(T) T
	AddWrap(T) T
	AddMod(x, m T) T
	Cmp(T) int
	Limbs() []uint64
}

// FromUint64 returns v as a Uint128.
func (Uint128) FromUint64(v uint64) (z Uint128) { z[0] = v; return }

// FromUint64 returns v as a Uint256.
func (Uint256) FromUint64(v uint64) (z Uint256) { z[0] = v; return }

// FromUint64 returns v as a Uint512.
func (Uint512) FromUint64(v uint64) (z Uint512) { z[0] = v; return }

// FromUint64 returns v as a Uint1024.
func (Uint1024) FromUint64(v uint64) (z Uint1024) { z[0] = v; return }

// FromUint64 returns v as a Uint2048.
func (Uint2048) FromUint64(v uint64) (z Uint2048) { z[0] = v; return }

func (Uint128) fromLimbs(l []uint64) (z Uint128)   { copy(z[:], l); return }
func (Uint256) fromLimbs(l []uint64) (z Uint256)   { copy(z[:], l); return }
func (Uint512) fromLimbs(l []uint64) (z Uint512)   { copy(z[:], l); return }
func (Uint1024) fromLimbs(l []uint64) (z Uint1024) { copy(z[:], l); return }
func (Uint2048) fromLimbs(l []uint64) (z Uint2048) { copy(z[:], l); return }

// MulWrap returns z*x mod 2^128.
func (z Uint128) MulWrap(x Uint128) (r Uint128) { limbsMulWrap(r[:], z[:], x[:]); return }

// MulWrap returns z*x mod 2^256.
func (z Uint256) MulWrap(x Uint256) (r Uint256) { limbsMulWrap(r[:], z[:], x[:]); return }

// MulWrap returns z*x mod 2^512.
func (z Uint512) MulWrap(x Uint512) (r Uint512) { limbsMulWrap(r[:], z[:], x[:]); return }

// MulWrap returns z*x mod 2^1024.
func (z Uint1024) MulWrap(x Uint1024) (r Uint1024) { limbsMulWrap(r[:], z[:], x[:]); return }

// MulWrap returns z*x mod 2^2048.
func (z Uint2048) MulWrap(x Uint2048) (r Uint2048) { limbsMulWrap(r[:], z[:], x[:]); return }

// AddWrap returns z+x mod 2^128.
func (z Uint128) AddWrap(x Uint128) (r Uint128) { limbsAdd(r[:], z[:], x[:]); return }

// AddWrap returns z+x mod 2^256.
func (z Uint256) AddWrap(x Uint256) (r Uint256) { limbsAdd(r[:], z[:], x[:]); return }

// AddWrap returns z+x mod 2^512.
func (z Uint512) AddWrap(x Uint512) (r Uint512) { limbsAdd(r[:], z[:], x[:]); return }

// AddWrap returns z+x mod 2^1024.
func (z Uint1024) AddWrap(x Uint1024) (r Uint1024) { limbsAdd(r[:], z[:], x[:]); return }

// AddWrap returns z+x mod 2^2048.
func (z Uint2048) AddWrap(x Uint2048) (r Uint2048) { limbsAdd(r[:], z[:], x[:]); return }

// AddMod returns (z+x) mod m in constant time, where z and x are between 0 and m-1
// and 2m-2 does not overflow the type.
func (z Uint128) AddMod(x, m Uint128) (r Uint128) {
	var s Uint128
	limbsAdd(s[:], z[:], x[:])
	borrow := limbsSub(r[:], s[:], m[:])
	limbsSelect(r[:], s[:], -borrow)
	return
}

// AddMod returns (z+x) mod m in constant time, where z and x are between 0 and m-1
// and 2m-2 does not overflow the type.
func (z Uint256) AddMod(x, m Uint256) (r Uint256) {
	var s Uint256
	limbsAdd(s[:], z[:], x[:])
	borrow := limbsSub(r[:], s[:], m[:])
	limbsSelect(r[:], s[:], -borrow)
	return
}

// AddMod returns (z+x) mod m in constant time, where z and x are between 0 and m-1
// and 2m-2 does not overflow the type.
func (z Uint512) AddMod(x, m Uint512) (r Uint512) {
	var s Uint512
	limbsAdd(s[:], z[:], x[:])
	borrow := limbsSub(r[:], s[:], m[:])
	limbsSelect(r[:], s[:], -borrow)
	return
}

// AddMod returns (z+x) mod m in constant time, where z and x are between 0 and m-1
// and 2m-2 does not overflow the type.
func (z Uint1024) AddMod(x, m Uint1024) (r Uint1024) {
	var s Uint1024
	limbsAdd(s[:], z[:], x[:])
	borrow := limbsSub(r[:], s[:], m[:])
	limbsSelect(r[:], s[:], -borrow)
	return
}

// AddMod returns (z+x) mod m in constant time, where z and x are between 0 and m-1
// and 2m-2 does not overflow the type.
func (z Uint2048) AddMod(x, m Uint2048) (r Uint2048) {
	var s Uint2048
	limbsAdd(s[:], z[:], x[:])
	borrow := limbsSub(r[:], s[:], m[:])
	limbsSelect(r[:], s[:], -borrow)
	return
}

// Cmp compares z and x and returns -1, 0 or 1.
func (z Uint128) Cmp(x Uint128) int { return limbsCmp(z[:], x[:]) }

// Cmp compares z and x and returns -1, 0 or 1.
func (z Uint256) Cmp(x Uint256) int { return limbsCmp(z[:], x[:]) }

// Cmp compares z and x and returns -1, 0 or 1.
func (z Uint512) Cmp(x Uint512) int { return limbsCmp(z[:], x[:]) }

// Cmp compares z and x and returns -1, 0 or 1.
func (z Uint1024) Cmp(x Uint1024) int { return limbsCmp(z[:], x[:]) }

// Cmp compares z and x and returns -1, 0 or 1.
func (z Uint2048) Cmp(x Uint2048) int { return limbsCmp(z[:], x[:]) }

// Limbs returns a copy of the little-endian 64-bit limbs of z.
func (z Uint128) Limbs() []uint64 { return z[:] }

// Limbs returns a copy of the little-endian 64-bit limbs of z.
func (z Uint256) Limbs() []uint64 { return z[:] }

// Limbs returns a copy of the little-endian 64-bit limbs of z.
func (z Uint512) Limbs() []uint64 { return z[:] }

// Limbs returns a copy of the little-endian 64-bit limbs of z.
func (z Uint1024) Limbs() []uint64 { return z[:] }

// Limbs returns a copy of the little-endian 64-bit limbs of z.
func (z Uint2048) Limbs() []uint64 { return z[:] }

// BigIntFromLimbs returns the little-endian limbs l as a big.Int.
// Runs in variable time and must only be used outside of the hot paths.
func BigIntFromLimbs(l []uint64) *big.Int {
	z := new(big.Int)
	tmp := new(big.Int)
	for i := len(l) - 1; i >= 0; i-- {
		z.Lsh(z, 64)
		z.Add(z, tmp.SetUint64(l[i]))
	}
	return z
}

// limbsMulWrap computes z = x*y mod 2^(64*len(z)), with len(x) == len(y) == len(z)
// and z zero-initialized. The schoolbook loop has no data-dependent branches.
func limbsMulWrap(z, x, y []uint64) {
	n := len(z)
	for i := 0; i < n; i++ {
		var carry, c uint64
		xi := x[i]
		for j := 0; i+j < n; j++ {
			hi, lo := bits.Mul64(xi, y[j])
			lo, c = bits.Add64(lo, carry, 0)
			hi, _ = bits.Add64(hi, 0, c)
			lo, c = bits.Add64(lo, z[i+j], 0)
			hi, _ = bits.Add64(hi, 0, c)
			z[i+j] = lo
			carry = hi
		}
	}
}

// limbsMul computes the full product z = x*y, with len(z) == len(x)+len(y).
func limbsMul(z, x, y []uint64) {
	for i := range z {
		z[i] = 0
	}
	for i, xi := range x {
		var carry, c uint64
		for j, yj := range y {
			hi, lo := bits.Mul64(xi, yj)
			lo, c = bits.Add64(lo, carry, 0)
			hi, _ = bits.Add64(hi, 0, c)
			lo, c = bits.Add64(lo, z[i+j], 0)
			hi, _ = bits.Add64(hi, 0, c)
			z[i+j] = lo
			carry = hi
		}
		z[i+len(y)] = carry
	}
}

// limbsAdd computes z = x+y and returns the outgoing carry.
func limbsAdd(z, x, y []uint64) (carry uint64) {
	for i := range z {
		z[i], carry = bits.Add64(x[i], y[i], carry)
	}
	return
}

// limbsSub computes z = x-y and returns the outgoing borrow.
func limbsSub(z, x, y []uint64) (borrow uint64) {
	for i := range z {
		z[i], borrow = bits.Sub64(x[i], y[i], borrow)
	}
	return
}

// limbsSelect overwrites z with x on the limbs selected by mask, which is
// either all-ones or all-zeros.
func limbsSelect(z, x []uint64, mask uint64) {
	for i := range z {
		z[i] = (x[i] & mask) | (z[i] &^ mask)
	}
}

// limbsCmp compares x and y and returns -1, 0 or 1.
func limbsCmp(x, y []uint64) int {
	for i := len(x) - 1; i >= 0; i-- {
		switch {
		case x[i] < y[i]:
			return -1
		case x[i] > y[i]:
			return 1
		}
	}
	return 0
}

// significantLimbs returns the number of limbs of l up to its most
// significant non-zero limb.
func significantLimbs(l []uint64) int {
	n := len(l)
	for n > 0 && l[n-1] == 0 {
		n--
	}
	return n
}

// product computes the little-endian limbs of the product of the moduli
// using a pairwise multiplication tree: adjacent pairs are multiplied with
// a widening multiplication, then pairwise again on the results, carrying a
// lone element unchanged at each level. Intermediate widths stay minimal.
// Runs in variable time; inputs are public moduli.
// Returns ErrProductTooWide if the product exceeds 2048 bits.
func product(moduli []uint64) ([]uint64, error) {

	if len(moduli) == 0 {
		return []uint64{1}, nil
	}

	level := make([][]uint64, len(moduli))
	for i, m := range moduli {
		level[i] = []uint64{m}
	}

	for len(level) > 1 {
		next := make([][]uint64, 0, (len(level)+1)>>1)
		for i := 0; i+1 < len(level); i += 2 {
			z := make([]uint64, len(level[i])+len(level[i+1]))
			limbsMul(z, level[i], level[i+1])
			next = append(next, z)
		}
		if len(level)&1 == 1 {
			next = append(next, level[len(level)-1])
		}
		level = next
	}

	p := level[0]
	if significantLimbs(p) > maxProductLimbs {
		return nil, ErrProductTooWide
	}

	return p, nil
}
