package ring

import (
	"encoding/binary"

	"github.com/tuneinsight/rnscore/utils/sampling"
)

// UniformSampler wraps a PRNG and samples polynomials with coefficients
// following a uniform distribution over [0, qi-1] for each modulus of
// the chain.
type UniformSampler struct {
	prng          sampling.PRNG
	ring          *Ring
	randomBufferN []byte
	ptr           int
}

// NewUniformSampler creates a new instance of UniformSampler sampling
// polynomials over the given ring.
func NewUniformSampler(prng sampling.PRNG, r *Ring) *UniformSampler {
	return &UniformSampler{
		prng:          prng,
		ring:          r,
		randomBufferN: make([]byte, 1024),
		ptr:           1024,
	}
}

// Read samples a new polynomial on pol.
func (s *UniformSampler) Read(pol *Poly) {

	var randomUint uint64

	buffer := s.randomBufferN
	ptr := s.ptr

	for j, subring := range s.ring.SubRings {

		qi := subring.Modulus
		mask := subring.Mask

		ptmp := pol.Coeffs[j]

		for i := range ptmp {

			// Rejection sampling: masks the stream to the modulus bit
			// length and retries until the value lands in [0, qi-1]
			for {
				if ptr == len(buffer) {
					if _, err := s.prng.Read(buffer); err != nil {
						panic(err)
					}
					ptr = 0
				}

				randomUint = binary.LittleEndian.Uint64(buffer[ptr:ptr+8]) & mask
				ptr += 8

				if randomUint < qi {
					break
				}
			}

			ptmp[i] = randomUint
		}
	}

	s.ptr = ptr
}

// ReadNew samples a new polynomial and returns it.
func (s *UniformSampler) ReadNew() (pol *Poly) {
	pol = s.ring.NewPoly()
	s.Read(pol)
	return
}
