package poly

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// PowTable returns the table (1, τ, τ², ..., τ^(2^ell - 1)) of consecutive
// powers of tau over the hypercube of dimension ell.
func PowTable(tau fr.Element, ell int) MultiLin {
	res := make(MultiLin, 1<<ell)
	res[0].SetOne()
	for i := 1; i < len(res); i++ {
		res[i].Mul(&res[i-1], &tau)
	}
	return res
}

// PowMasks returns the tensor split (h1, h2) of PowTable(tau, ell):
// h1[i] = τ^(i mod 2^l1) and h2[i] = τ^(i - i mod 2^l1) with l1 = ⌈ell/2⌉,
// so that h1[i]·h2[i] = τ^i entry-wise. Both tables are multilinear, which is
// what lets the power weights ride inside a sumcheck integrand.
func PowMasks(tau fr.Element, ell int) (MultiLin, MultiLin) {
	l1 := (ell + 1) / 2
	lowSize := 1 << l1

	h1 := make(MultiLin, 1<<ell)
	h2 := make(MultiLin, 1<<ell)

	low := PowTable(tau, l1)

	// stride = τ^(2^l1), the increment between consecutive high blocks
	var stride, acc fr.Element
	stride.Mul(&low[lowSize-1], &tau)
	acc.SetOne()

	for i := range h1 {
		if i > 0 && i%lowSize == 0 {
			acc.Mul(&acc, &stride)
		}
		h1[i] = low[i%lowSize]
		h2[i] = acc
	}
	return h1, h2
}

// ShiftedPowTable returns the table of PowTable(tau, ell) advanced by one
// power: entry i holds τ^(i+1). It is the left-hand side of the
// power-consistency recurrence e[i+1] = τ·e[i].
func ShiftedPowTable(tau fr.Element, ell int) MultiLin {
	res := PowTable(tau, ell)
	for i := range res {
		res[i].Mul(&res[i], &tau)
	}
	return res
}
