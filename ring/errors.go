package ring

import "errors"

// Errors returned by the constructors and the shape checks of the
// per-call operations. Construction failures are not recoverable at
// this layer and must not be retried.
var (
	// ErrNotInvertible is returned when a punctured modulus product has no
	// inverse, i.e. when the moduli chain is not pairwise coprime.
	ErrNotInvertible = errors.New("punctured product is not invertible (moduli are not pairwise coprime)")

	// ErrModulusOutOfRange is returned when a modulus is zero or exceeds 63 bits.
	ErrModulusOutOfRange = errors.New("modulus must be non-zero and at most 63 bits")

	// ErrShapeMismatch is returned when the dimensions of an input
	// polynomial do not match the expected moduli chain and degree.
	ErrShapeMismatch = errors.New("polynomial dimensions do not match the ring")

	// ErrWidthTooSmall is returned when the accumulator type chosen for a
	// CRT composition cannot hold the maximum intermediate value.
	ErrWidthTooSmall = errors.New("accumulator type too narrow for the moduli product")

	// ErrDegreeMismatch is returned when two rings that must interoperate
	// do not share the same degree.
	ErrDegreeMismatch = errors.New("rings have different degrees")

	// ErrProductTooWide is returned when the product of the moduli chain
	// exceeds the widest type of the widening tower.
	ErrProductTooWide = errors.New("moduli product exceeds 2048 bits")

	// ErrAccumulatorOverflow is returned when the un-reduced conversion sum
	// cannot be bounded by 128 bits for the given bases.
	ErrAccumulatorOverflow = errors.New("conversion sum does not fit a 128-bit accumulator")
)
