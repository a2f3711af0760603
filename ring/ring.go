// Package ring implements RNS modular arithmetic for polynomials whose
// coefficients are stored as residues over a chain of moduli, including:
// constant-time Barrett reduction kernels; CRT composition into wide
// fixed-width integers; approximate RNS basis conversion; uniform sampling.
package ring

import (
	"fmt"
	"math/big"

	"github.com/tuneinsight/rnscore/utils"
)

// Ring is a structure that keeps all the variables required to operate on
// polynomials represented as an L x N matrix of residues, one row per
// modulus of the chain. A Ring is immutable after construction and safe
// for concurrent use.
type Ring struct {

	// Polynomial number of coefficients
	N int

	// Per-modulus precomputation, one SubRing per modulus of the chain
	SubRings []*SubRing

	// Product of the moduli for each level
	ModulusAtLevel []*big.Int
}

// NewRing creates a new RNS Ring with degree N and coefficient moduli.
// N must be a power of two. Moduli should be a non-empty []uint64 with
// distinct elements, each non-zero and at most 63 bits. The product of
// the moduli is never materialized as a single word; ModulusAtLevel
// holds it as a big.Int for validation and variable-time use only.
func NewRing(N int, moduli []uint64) (r *Ring, err error) {

	if N < 1 || N&(N-1) != 0 {
		return nil, fmt.Errorf("invalid ring degree: %d is not a power of two", N)
	}

	if len(moduli) == 0 {
		return nil, fmt.Errorf("invalid moduli chain: empty")
	}

	if !utils.AllDistinct(moduli) {
		return nil, fmt.Errorf("invalid moduli chain: moduli are not distinct")
	}

	r = new(Ring)
	r.N = N

	r.SubRings = make([]*SubRing, len(moduli))
	for i, qi := range moduli {
		if r.SubRings[i], err = NewSubRing(qi); err != nil {
			return nil, err
		}
	}

	r.ModulusAtLevel = make([]*big.Int, len(moduli))
	r.ModulusAtLevel[0] = new(big.Int).SetUint64(moduli[0])
	for i := 1; i < len(moduli); i++ {
		r.ModulusAtLevel[i] = new(big.Int).Mul(r.ModulusAtLevel[i-1], new(big.Int).SetUint64(moduli[i]))
	}

	return r, nil
}

// ModuliChain returns the moduli of the ring.
func (r *Ring) ModuliChain() []uint64 {
	moduli := make([]uint64, len(r.SubRings))
	for i, s := range r.SubRings {
		moduli[i] = s.Modulus
	}
	return moduli
}

// ModuliChainLength returns the number of moduli of the ring.
func (r *Ring) ModuliChainLength() int {
	return len(r.SubRings)
}

// Modulus returns the product of the moduli of the ring as a big.Int.
func (r *Ring) Modulus() *big.Int {
	return r.ModulusAtLevel[len(r.ModulusAtLevel)-1]
}

// NewPoly creates a new polynomial over the ring, with all coefficients
// set to zero.
func (r *Ring) NewPoly() *Poly {
	return NewPoly(r.N, len(r.SubRings)-1)
}

// ValidShape returns a nil error if the dimensions of pol match the
// moduli chain and degree of the ring.
func (r *Ring) ValidShape(pol *Poly) error {
	if len(pol.Coeffs) != len(r.SubRings) || pol.N() != r.N {
		return fmt.Errorf("%w: got %dx%d, expected %dx%d",
			ErrShapeMismatch, len(pol.Coeffs), pol.N(), len(r.SubRings), r.N)
	}
	return nil
}

// Equal returns true if the receiver and other operate on the same degree
// and moduli chain.
func (r *Ring) Equal(other *Ring) bool {
	if r.N != other.N || len(r.SubRings) != len(other.SubRings) {
		return false
	}
	for i := range r.SubRings {
		if r.SubRings[i].Modulus != other.SubRings[i].Modulus {
			return false
		}
	}
	return true
}
