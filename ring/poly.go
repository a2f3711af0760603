package ring

// Poly is the structure that contains the coefficients of a polynomial,
// stored as residues in a single flat buffer: row i holds the N residues
// modulo the i-th modulus of the chain, at indices [i*N, (i+1)*N).
type Poly struct {
	Coeffs [][]uint64 // Dimension-2 slice of coefficients (re-slice of Buff)
	Buff   []uint64   // Dimension-1 slice of coefficients
}

// NewPoly creates a new polynomial with N coefficients set to zero and Level+1 moduli.
func NewPoly(N, Level int) (pol *Poly) {
	pol = new(Poly)

	pol.Buff = make([]uint64, N*(Level+1))
	pol.Coeffs = make([][]uint64, Level+1)
	for i := 0; i < Level+1; i++ {
		pol.Coeffs[i] = pol.Buff[i*N : (i+1)*N]
	}

	return
}

// N returns the number of coefficients of the polynomial, which equals the
// degree of the ring cyclotomic polynomial.
func (pol *Poly) N() int {
	if len(pol.Coeffs) == 0 {
		return 0
	}
	return len(pol.Coeffs[0])
}

// Level returns the current number of moduli minus 1.
func (pol *Poly) Level() int {
	return len(pol.Coeffs) - 1
}

// RowRange returns the index range [start, end) of the i-th residue row
// inside Buff. The row is contiguous; Coeffs[i] is its re-slice.
func (pol *Poly) RowRange(i int) (start, end int) {
	N := pol.N()
	return i * N, (i + 1) * N
}

// Zero sets all coefficients of the target polynomial to 0.
func (pol *Poly) Zero() {
	for i := range pol.Buff {
		pol.Buff[i] = 0
	}
}

// CopyNew creates an exact copy of the target polynomial.
func (pol *Poly) CopyNew() (p1 *Poly) {
	p1 = NewPoly(pol.N(), pol.Level())
	copy(p1.Buff, pol.Buff)
	return
}

// Copy copies the coefficients of p1 on the target polynomial.
// Expects the dimensions of both polynomials to be identical.
func (pol *Poly) Copy(p1 *Poly) {
	if pol != p1 {
		copy(pol.Buff, p1.Buff)
	}
}

// Equal returns true if the receiver Poly is equal to the provided other Poly.
// This function checks for strict equality between the polynomial coefficients.
func (pol *Poly) Equal(other *Poly) bool {

	if pol == other {
		return true
	}

	if len(pol.Buff) != len(other.Buff) || len(pol.Coeffs) != len(other.Coeffs) {
		return false
	}

	for i := range pol.Buff {
		if pol.Buff[i] != other.Buff[i] {
			return false
		}
	}

	return true
}
