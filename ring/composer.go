package ring

import (
	"fmt"
	"math/big"
)

// CrtComposer stores the precomputation required to recover, for each
// coefficient of a polynomial, the unique integer in [0, q) matching its
// residues, where q is the product of the moduli chain.
// A CrtComposer is immutable after construction and safe for concurrent use.
type CrtComposer struct {
	ring *Ring

	// ((q/qi)^-1 mod qi) bound to qi, one multiplier per modulus
	invPunctured []ConstMultiplier

	// Little-endian limbs of the punctured products q/qi
	puncturedLimbs [][]uint64

	// Little-endian limbs of q
	modulusLimbs []uint64

	// Upper bound on the widest value appearing during composition
	maxIntermediate *big.Int
}

// NewCrtComposer creates a new CrtComposer over the given ring.
// Returns ErrNotInvertible if the moduli chain is not pairwise coprime and
// ErrProductTooWide if the moduli product exceeds the widening tower.
func NewCrtComposer(r *Ring) (c *CrtComposer, err error) {

	moduli := r.ModuliChain()
	L := len(moduli)

	c = new(CrtComposer)
	c.ring = r
	c.invPunctured = make([]ConstMultiplier, L)
	c.puncturedLimbs = make([][]uint64, L)

	if c.modulusLimbs, err = product(moduli); err != nil {
		return nil, err
	}

	punctured := make([]uint64, 0, L-1)
	for i, s := range r.SubRings {

		qi := s.Modulus

		// (prod_{j != i} qj) mod qi, by iterated widening multiply
		// followed by reduction
		p := uint64(1)
		punctured = punctured[:0]
		for j, qj := range moduli {
			if j != i {
				p = BRed(p, qj, qi, s.BRedConstant)
				punctured = append(punctured, qj)
			}
		}

		var pInv uint64
		if pInv, err = InvMod(p, qi); err != nil {
			return nil, fmt.Errorf("%w: modulus %d of chain %v", ErrNotInvertible, qi, moduli)
		}

		c.invPunctured[i] = s.NewConstMultiplier(pInv)

		if c.puncturedLimbs[i], err = product(punctured); err != nil {
			return nil, err
		}
	}

	c.maxIntermediate = ComposeMaxIntermediateValue(moduli)

	return c, nil
}

// InvPunctured returns the per-modulus multipliers by (q/qi)^-1 mod qi.
// The returned slice is shared and must be treated as read-only.
func (c *CrtComposer) InvPunctured() []ConstMultiplier {
	return c.invPunctured
}

// Ring returns the ring the composer operates on.
func (c *CrtComposer) Ring() *Ring {
	return c.ring
}

// ComposeMaxIntermediateValue returns an upper bound on the widest value
// appearing during the composition over the given moduli: the modulus
// itself for a single-element chain, twice the moduli product otherwise.
// Callers use it to pick an accumulator type wide enough for Compose.
func ComposeMaxIntermediateValue(moduli []uint64) *big.Int {

	q := new(big.Int).SetUint64(1)
	for _, qi := range moduli {
		q.Mul(q, new(big.Int).SetUint64(qi))
	}

	if len(moduli) == 1 {
		return q
	}

	return q.Lsh(q, 1)
}

// Compose recovers, for each coefficient of pol, the unique integer
// x in [0, q) such that x mod qi equals the i-th residue, as values of the
// accumulator type T. Returns ErrShapeMismatch if the dimensions of pol do
// not match the ring and ErrWidthTooSmall if T cannot hold
// ComposeMaxIntermediateValue of the moduli chain.
func Compose[T WideUint[T]](c *CrtComposer, pol *Poly) ([]T, error) {
	if err := c.ring.ValidShape(pol); err != nil {
		return nil, err
	}
	return ComposeCoeffs[T](c, pol.Coeffs)
}

// ComposeCoeffs is Compose on a raw L x N residue matrix, with one row
// per modulus of the chain.
func ComposeCoeffs[T WideUint[T]](c *CrtComposer, coeffs [][]uint64) ([]T, error) {

	var zero T

	L := len(c.ring.SubRings)

	if len(coeffs) != L {
		return nil, fmt.Errorf("%w: %d rows, expected %d", ErrShapeMismatch, len(coeffs), L)
	}

	N := len(coeffs[0])
	for _, row := range coeffs {
		if len(row) != N {
			return nil, fmt.Errorf("%w: ragged residue matrix", ErrShapeMismatch)
		}
	}

	if bitCap := 64 * len(zero.Limbs()); c.maxIntermediate.BitLen() > bitCap {
		return nil, fmt.Errorf("%w: need %d bits, accumulator has %d",
			ErrWidthTooSmall, c.maxIntermediate.BitLen(), bitCap)
	}

	q := zero.fromLimbs(c.modulusLimbs)

	res := make([]T, N)

	// The residues are secret: the inner kernels MulMod, MulWrap and AddMod
	// are constant time in them. The loop bounds, q and the punctured
	// products depend only on the public moduli.
	for i := 0; i < L; i++ {

		inv := c.invPunctured[i]
		pi := zero.fromLimbs(c.puncturedLimbs[i])
		row := coeffs[i]

		for k := 0; k < N; k++ {
			// r*pi < q, so the wrapping multiplication is exact
			res[k] = res[k].AddMod(zero.FromUint64(inv.MulMod(row[k])).MulWrap(pi), q)
		}
	}

	return res, nil
}
