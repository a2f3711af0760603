package ring

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// checkApproxConversion verifies, coefficient by coefficient and entirely
// with big.Int arithmetic, that out matches the fast-conversion definition:
// out[j][k] = X mod tj where X is the un-reduced scaled sum, and that
// X = x + a*Q for the composed value x and a single a in [0, L).
func checkApproxConversion(t *testing.T, ringQ, ringT *Ring, pol, out *Poly) {

	t.Helper()

	Q := ringQ.ModuliChain()
	T := ringT.ModuliChain()
	L := len(Q)
	N := ringQ.N

	qBig := ringQ.Modulus()
	x := composeBig(Q, pol.Coeffs)

	tmp := new(big.Int)
	for k := 0; k < N; k++ {

		// X = sum_i ((r_i * (Q/qi)^-1) mod qi) * (Q/qi)
		X := new(big.Int)
		for i, qi := range Q {
			qiBig := new(big.Int).SetUint64(qi)
			punctured := new(big.Int).Quo(qBig, qiBig)
			scaled := new(big.Int).ModInverse(punctured, qiBig)
			scaled.Mul(scaled, new(big.Int).SetUint64(pol.Coeffs[i][k]))
			scaled.Mod(scaled, qiBig)
			X.Add(X, scaled.Mul(scaled, punctured))
		}

		// X = x + a*Q with 0 <= a < L, independently of the output modulus
		a := new(big.Int).Sub(X, x[k])
		a.Quo(a, qBig)
		require.Zero(t, tmp.Sub(X, tmp.Mul(a, qBig)).Cmp(x[k]))
		require.True(t, a.Sign() >= 0)
		require.Negative(t, a.Cmp(new(big.Int).SetInt64(int64(L))))

		for j, tj := range T {
			require.Equal(t, tmp.Mod(X, new(big.Int).SetUint64(tj)).Uint64(), out.Coeffs[j][k],
				"output modulus %d coefficient %d", j, k)
		}
	}
}

func TestBasisExtender(t *testing.T) {

	t.Run("ZeroInput", func(t *testing.T) {

		ringQ, err := NewRing(1, []uint64{17, 19})
		require.NoError(t, err)
		ringT, err := NewRing(1, []uint64{23})
		require.NoError(t, err)

		be, err := NewBasisExtender(ringQ, ringT)
		require.NoError(t, err)

		out, err := be.ConvertApproximate(ringQ.NewPoly())
		require.NoError(t, err)
		require.Equal(t, uint64(0), out.Coeffs[0][0])
	})

	t.Run("BoundedError", func(t *testing.T) {

		ringQ, err := NewRing(1, []uint64{17, 19})
		require.NoError(t, err)
		ringT, err := NewRing(1, []uint64{23})
		require.NoError(t, err)

		be, err := NewBasisExtender(ringQ, ringT)
		require.NoError(t, err)

		pol := ringQ.NewPoly()
		pol.Coeffs[0][0] = 3
		pol.Coeffs[1][0] = 5

		out, err := be.ConvertApproximate(pol)
		require.NoError(t, err)

		// The composed value is x = 309; the conversion returns
		// (x + a*323) mod 23 for some a in {0, 1}
		require.Contains(t, []uint64{309 % 23, (309 + 323) % 23}, out.Coeffs[0][0])

		checkApproxConversion(t, ringQ, ringT, pol, out)
	})

	t.Run("Random", func(t *testing.T) {

		prng := newTestPRNG(t)

		type testCase struct {
			name    string
			moduliQ []uint64
			moduliT []uint64
			N       int
		}

		for _, tc := range []testCase{
			{"L2/M1/N8", Qi60[:2], Pi60[:1], 8},
			{"L4/M3/N128", Qi60[:4], Pi60[:3], 128},
			{"L6/M6/N32", Qi60[:6], Pi60[:6], 32},
			{"Small/L3/M2/N16", []uint64{7, 11, 13}, []uint64{17, 23}, 16},
		} {
			t.Run(tc.name, func(t *testing.T) {

				ringQ, err := NewRing(tc.N, tc.moduliQ)
				require.NoError(t, err)
				ringT, err := NewRing(tc.N, tc.moduliT)
				require.NoError(t, err)

				be, err := NewBasisExtender(ringQ, ringT)
				require.NoError(t, err)

				pol := NewUniformSampler(prng, ringQ).ReadNew()

				out, err := be.ConvertApproximate(pol)
				require.NoError(t, err)

				checkApproxConversion(t, ringQ, ringT, pol, out)
			})
		}
	})

	t.Run("ScaleAssembleDecomposition", func(t *testing.T) {

		prng := newTestPRNG(t)

		ringQ, err := NewRing(64, Qi60[:3])
		require.NoError(t, err)
		ringT, err := NewRing(64, Pi60[:2])
		require.NoError(t, err)

		be, err := NewBasisExtender(ringQ, ringT)
		require.NoError(t, err)

		pol := NewUniformSampler(prng, ringQ).ReadNew()
		polCopy := pol.CopyNew()

		out, err := be.ConvertApproximate(pol)
		require.NoError(t, err)

		scaled := pol.CopyNew()
		require.NoError(t, be.ScaleInPlace(scaled))
		out2, err := be.AssembleOutput(scaled)
		require.NoError(t, err)

		require.Empty(t, cmp.Diff(out.Coeffs, out2.Coeffs))

		// The input is borrowed for read only
		require.True(t, pol.Equal(polCopy))
	})

	t.Run("SharedComposer", func(t *testing.T) {

		prng := newTestPRNG(t)

		ringQ, err := NewRing(16, Qi60[:3])
		require.NoError(t, err)
		ringT, err := NewRing(16, Pi60[:2])
		require.NoError(t, err)

		be, err := NewBasisExtender(ringQ, ringT)
		require.NoError(t, err)

		pol := NewUniformSampler(prng, ringQ).ReadNew()

		// The scaling step applies the composer's punctured-inverse
		// multipliers row-wise
		scaled := pol.CopyNew()
		require.NoError(t, be.ScaleInPlace(scaled))

		invPunctured := be.CrtComposer().InvPunctured()
		for i := range pol.Coeffs {
			for k, v := range pol.Coeffs[i] {
				require.Equal(t, invPunctured[i].MulMod(v), scaled.Coeffs[i][k])
			}
		}

		// Composing through the extender matches composing directly
		res, err := CrtCompose[Uint256](be, pol)
		require.NoError(t, err)

		direct, err := Compose[Uint256](be.CrtComposer(), pol)
		require.NoError(t, err)

		for k := range res {
			require.Zero(t, res[k].Cmp(direct[k]))
		}
	})

	t.Run("DegreeMismatch", func(t *testing.T) {

		ringQ, err := NewRing(4, []uint64{17, 19})
		require.NoError(t, err)
		ringT, err := NewRing(8, []uint64{23})
		require.NoError(t, err)

		_, err = NewBasisExtender(ringQ, ringT)
		require.ErrorIs(t, err, ErrDegreeMismatch)
	})

	t.Run("AccumulatorOverflow", func(t *testing.T) {

		// Five pairwise coprime moduli close to 2^63 push the un-reduced
		// sum against a 63-bit output modulus beyond 128 bits
		moduliQ := []uint64{1<<63 - 9, 1<<63 - 7, 1<<63 - 5, 1<<63 - 3, 1<<63 - 1}

		ringQ, err := NewRing(4, moduliQ)
		require.NoError(t, err)
		ringT, err := NewRing(4, []uint64{1<<63 - 1})
		require.NoError(t, err)

		_, err = NewBasisExtender(ringQ, ringT)
		require.ErrorIs(t, err, ErrAccumulatorOverflow)
	})

	t.Run("ShapeMismatch", func(t *testing.T) {

		ringQ, err := NewRing(4, []uint64{17, 19})
		require.NoError(t, err)
		ringT, err := NewRing(4, []uint64{23})
		require.NoError(t, err)

		be, err := NewBasisExtender(ringQ, ringT)
		require.NoError(t, err)

		_, err = be.ConvertApproximate(NewPoly(4, 2))
		require.ErrorIs(t, err, ErrShapeMismatch)

		require.ErrorIs(t, be.ScaleInPlace(NewPoly(8, 1)), ErrShapeMismatch)

		_, err = be.AssembleOutput(NewPoly(4, 0))
		require.ErrorIs(t, err, ErrShapeMismatch)
	})
}

func BenchmarkConvertApproximate(b *testing.B) {

	prng := newTestPRNG(b)

	ringQ, err := NewRing(1<<12, Qi60[:4])
	require.NoError(b, err)
	ringT, err := NewRing(1<<12, Pi60[:4])
	require.NoError(b, err)

	be, err := NewBasisExtender(ringQ, ringT)
	require.NoError(b, err)

	pol := NewUniformSampler(prng, ringQ).ReadNew()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := be.ConvertApproximate(pol); err != nil {
			b.Fatal(err)
		}
	}
}
