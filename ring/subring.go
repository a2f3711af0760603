package ring

import (
	"fmt"
	"math/bits"
)

// SubRing stores the precomputation for fast constant-time modular
// reduction for a given modulus. The modulus must be non-zero and at
// most 63 bits so that lazy reductions fit a 64-bit word.
type SubRing struct {

	// Modulus
	Modulus uint64

	// 2^bit_length(Modulus-1) - 1
	Mask uint64

	// Fast reduction constant (Barrett)
	BRedConstant [2]uint64
}

// NewSubRing creates a new SubRing with the given modulus.
// Returns ErrModulusOutOfRange if the modulus is zero or exceeds 63 bits.
func NewSubRing(modulus uint64) (s *SubRing, err error) {

	if modulus == 0 || modulus > 1<<63-1 {
		return nil, fmt.Errorf("%w: %d", ErrModulusOutOfRange, modulus)
	}

	s = &SubRing{}
	s.Modulus = modulus
	s.Mask = (1 << uint64(bits.Len64(modulus-1))) - 1
	s.BRedConstant = GenBRedConstant(modulus)

	return
}

// Reduce returns a mod Modulus in constant time, where a is a 128-bit
// value given as (ahi, alo) 64-bit words.
func (s *SubRing) Reduce(ahi, alo uint64) uint64 {
	return BRed128(ahi, alo, s.Modulus, s.BRedConstant)
}

// AddMod returns (a+b) mod Modulus in constant time, where a and b are
// between 0 and Modulus-1.
func (s *SubRing) AddMod(a, b uint64) uint64 {
	return AddMod(a, b, s.Modulus)
}

// NewConstMultiplier binds the constant scalar to the SubRing modulus for
// repeated constant-time multiplication. The scalar is reduced if it is
// not already between 0 and Modulus-1.
func (s *SubRing) NewConstMultiplier(scalar uint64) ConstMultiplier {
	return ConstMultiplier{
		scalar:       BRedAdd(scalar, s.Modulus, s.BRedConstant),
		modulus:      s.Modulus,
		bredconstant: s.BRedConstant,
	}
}

// ConstMultiplier stores a fixed multiplicand bound to a modulus.
// It is immutable after construction and safe for concurrent use.
type ConstMultiplier struct {
	scalar       uint64
	modulus      uint64
	bredconstant [2]uint64
}

// Scalar returns the bound multiplicand.
func (c ConstMultiplier) Scalar() uint64 {
	return c.scalar
}

// MulMod returns scalar*x mod Modulus, where x is between 0 and Modulus-1.
// Execution time is independent of both x and the bound scalar.
func (c ConstMultiplier) MulMod(x uint64) uint64 {
	return BRed(x, c.scalar, c.modulus, c.bredconstant)
}

// MulModVec applies MulMod element-wise on p1 and writes the result on p2.
func (c ConstMultiplier) MulModVec(p1, p2 []uint64) {
	scalar, q, bredconstant := c.scalar, c.modulus, c.bredconstant
	for i, v := range p1 {
		p2[i] = BRed(v, scalar, q, bredconstant)
	}
}
