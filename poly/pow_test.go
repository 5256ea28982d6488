package poly

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPowTable(t *testing.T) {
	var tau fr.Element
	tau.SetUint64(3)

	for ell := 0; ell <= 5; ell++ {
		table := PowTable(tau, ell)
		require.Len(t, table, 1<<ell)

		var expected fr.Element
		expected.SetOne()
		for i := range table {
			assert.True(t, table[i].Equal(&expected), "entry %v of the power table for ell = %v", i, ell)
			expected.Mul(&expected, &tau)
		}
	}
}

func TestPowMasksProduct(t *testing.T) {
	var tau fr.Element
	tau.SetUint64(7)

	for ell := 0; ell <= 6; ell++ {
		h1, h2 := PowMasks(tau, ell)
		require.Len(t, h1, 1<<ell)
		require.Len(t, h2, 1<<ell)

		table := PowTable(tau, ell)
		var prod fr.Element
		for i := range table {
			prod.Mul(&h1[i], &h2[i])
			assert.True(t, prod.Equal(&table[i]), "mask product at entry %v for ell = %v", i, ell)
		}
	}
}

func TestShiftedPowTable(t *testing.T) {
	var tau fr.Element
	tau.SetUint64(11)

	for ell := 0; ell <= 4; ell++ {
		table := PowTable(tau, ell)
		shifted := ShiftedPowTable(tau, ell)
		require.Len(t, shifted, 1<<ell)

		var expected fr.Element
		for i := range shifted {
			expected.Mul(&table[i], &tau)
			assert.True(t, shifted[i].Equal(&expected), "shifted entry %v for ell = %v", i, ell)
		}
	}
}
