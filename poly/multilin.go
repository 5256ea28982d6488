package poly

import (
	"fmt"

	"github.com/consensys/zerofold/common"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// MultiLin tracks the values of a (dense i.e. not sparse) multilinear polynomial
// over the boolean hypercube, as a bookkeeping table of length a power of two.
type MultiLin []fr.Element

func (m MultiLin) String() string {
	return fmt.Sprintf("%v", common.FrSliceToString(m))
}

// Fold folds the table on its first coordinate using the given value r
func (m *MultiLin) Fold(r fr.Element) {
	mid := len(*m) / 2
	m.FoldChunk(r, 0, mid)
	*m = (*m)[:mid]
}

// FoldChunk folds one part of the table
func (m *MultiLin) FoldChunk(r fr.Element, start, stop int) {
	mid := len(*m) / 2
	bottom, top := (*m)[:mid], (*m)[mid:]
	for i := start; i < stop; i++ {
		// updating bookkeeping table
		// table[i] <- table[i] + r (table[i + mid] - table[i])
		top[i].Sub(&top[i], &bottom[i])
		top[i].Mul(&top[i], &r)
		bottom[i].Add(&bottom[i], &top[i])
	}
}

// DeepCopy creates a deep copy of a bookkeeping table.
// Both multilinear interpolation and sumcheck require folding an underlying
// array, but folding changes the array. To do both one requires a deep copy
// of the bookkeeping table.
func (m MultiLin) DeepCopy() MultiLin {
	tableDeepCopy := make([]fr.Element, len(m))
	copy(tableDeepCopy, m)
	return tableDeepCopy
}

// Evaluate takes a dense bookkeeping table, deep copies it, folds it along the
// variables on which the table depends by substituting the corresponding coordinate
// from relevantCoordinates. After folding, bkCopy is reduced to a one item slice
// containing the evaluation of the original bkt at relevantCoordinates. This is returned.
func (m MultiLin) Evaluate(coordinates []fr.Element) fr.Element {
	bkCopy := m.DeepCopy()
	for _, r := range coordinates {
		bkCopy.Fold(r)
	}

	return bkCopy[0]
}

// Mix returns the entry-wise linear combination a + r(b - a). It is how two
// tables of the same size are recombined at a folding challenge.
func Mix(a, b MultiLin, r fr.Element) MultiLin {
	if len(a) != len(b) {
		panic(fmt.Sprintf("cannot mix tables of size %v and %v", len(a), len(b)))
	}
	res := make(MultiLin, len(a))
	var tmp fr.Element
	for i := range a {
		tmp.Sub(&b[i], &a[i])
		tmp.Mul(&tmp, &r)
		res[i].Add(&a[i], &tmp)
	}
	return res
}

// MixScalar returns a + r(b - a)
func MixScalar(a, b, r fr.Element) fr.Element {
	var res fr.Element
	res.Sub(&b, &a)
	res.Mul(&res, &r)
	res.Add(&res, &a)
	return res
}

// MixVec is Mix over plain scalar vectors
func MixVec(a, b []fr.Element, r fr.Element) []fr.Element {
	return Mix(MultiLin(a), MultiLin(b), r)
}
