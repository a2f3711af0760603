package ring

import (
	"fmt"
	"math/big"
	"math/bits"
)

// BasisExtender stores the necessary parameters for approximate RNS basis
// conversion from an input basis Q to an independent output basis T of the
// same degree. The used algorithm is the fast conversion from
// https://eprint.iacr.org/2016/510.pdf: the outer reduction modulo Q is
// dropped, so the result matches the composed input up to an additive
// error a*Q with a in [0, len(Q)), which downstream noise budgets absorb.
// A BasisExtender is immutable after construction and safe for concurrent use.
type BasisExtender struct {
	ringQ *Ring
	ringT *Ring

	composer *CrtComposer

	// (Q/qi) mod tj for each output modulus tj and input modulus qi
	qoverqimodt [][]uint64
}

// NewBasisExtender creates a new BasisExtender from the basis of ringQ to
// the basis of ringT. Returns ErrDegreeMismatch if the rings have different
// degrees, ErrNotInvertible if the moduli of ringQ are not pairwise
// coprime and ErrAccumulatorOverflow if the un-reduced conversion sum
// cannot be bounded by 128 bits.
func NewBasisExtender(ringQ, ringT *Ring) (be *BasisExtender, err error) {

	if ringQ.N != ringT.N {
		return nil, fmt.Errorf("%w: %d and %d", ErrDegreeMismatch, ringQ.N, ringT.N)
	}

	be = new(BasisExtender)
	be.ringQ = ringQ
	be.ringT = ringT

	if be.composer, err = NewCrtComposer(ringQ); err != nil {
		return nil, err
	}

	Q := ringQ.ModuliChain()

	be.qoverqimodt = make([][]uint64, len(ringT.SubRings))
	for j, s := range ringT.SubRings {

		tj := s.Modulus

		be.qoverqimodt[j] = make([]uint64, len(Q))
		for i := range Q {
			p := uint64(1)
			for u, qu := range Q {
				if u != i {
					p = BRed(p, qu, tj, s.BRedConstant)
				}
			}
			be.qoverqimodt[j][i] = p
		}

		// The per-coefficient sum over the input basis is accumulated
		// un-reduced on 128 bits; its worst case must fit.
		sum := new(big.Int)
		term := new(big.Int)
		for _, qi := range Q {
			term.SetUint64(qi - 1)
			term.Mul(term, new(big.Int).SetUint64(tj-1))
			sum.Add(sum, term)
		}
		if sum.BitLen() > 128 {
			return nil, fmt.Errorf("%w: %d input moduli against output modulus of %d bits",
				ErrAccumulatorOverflow, len(Q), bits.Len64(tj))
		}
	}

	return be, nil
}

// CrtComposer returns the embedded composer over the input basis. Its
// punctured-inverse multipliers are shared with the scaling step and must
// be treated as read-only.
func (be *BasisExtender) CrtComposer() *CrtComposer {
	return be.composer
}

// ConvertApproximate converts pol from the input basis to the output basis.
// The input is borrowed for read; the result is freshly allocated. For each
// coefficient with composed value x, the output residues match x + a*Q
// for a single integer a in [0, len(Q)).
func (be *BasisExtender) ConvertApproximate(pol *Poly) (*Poly, error) {

	if err := be.ringQ.ValidShape(pol); err != nil {
		return nil, err
	}

	scaled := pol.CopyNew()
	if err := be.ScaleInPlace(scaled); err != nil {
		return nil, err
	}

	return be.AssembleOutput(scaled)
}

// ScaleInPlace multiplies each residue row i of pol by (Q/qi)^-1 mod qi,
// in place. It is the first phase of ConvertApproximate, separated so the
// scaling can be hoisted when the same input is projected to several
// output bases.
func (be *BasisExtender) ScaleInPlace(pol *Poly) error {

	if err := be.ringQ.ValidShape(pol); err != nil {
		return err
	}

	for i, c := range be.composer.invPunctured {
		c.MulModVec(pol.Coeffs[i], pol.Coeffs[i])
	}

	return nil
}

// AssembleOutput computes the output-basis residues of a polynomial already
// scaled by ScaleInPlace. For each output modulus tj and coefficient k, the
// products scaled[i][k]*((Q/qi) mod tj) are accumulated un-reduced on
// 128 bits with i ascending, and a single reduction modulo tj is applied
// to the final sum.
func (be *BasisExtender) AssembleOutput(scaled *Poly) (*Poly, error) {

	if err := be.ringQ.ValidShape(scaled); err != nil {
		return nil, err
	}

	L := len(be.ringQ.SubRings)
	N := be.ringQ.N

	out := be.ringT.NewPoly()

	for j, s := range be.ringT.SubRings {

		qoverqimodt := be.qoverqimodt[j]
		outRow := out.Coeffs[j]

		for k := 0; k < N; k++ {

			var shi, slo, c uint64
			for i := 0; i < L; i++ {
				mhi, mlo := bits.Mul64(scaled.Coeffs[i][k], qoverqimodt[i])
				slo, c = bits.Add64(slo, mlo, 0)
				shi += mhi + c
			}

			outRow[k] = s.Reduce(shi, slo)
		}
	}

	return out, nil
}

// CrtCompose composes pol over the input basis through the embedded
// composer, as values of the accumulator type T.
func CrtCompose[T WideUint[T]](be *BasisExtender, pol *Poly) ([]T, error) {
	return Compose[T](be.composer, pol)
}
