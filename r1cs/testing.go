package r1cs

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// CubicShape returns the 4-constraint system for x³ + x + 5 = y, the
// standard small example circuit. The assignment is z = (x, v0, v1, u, y)
// with v0 = x² and v1 = x³:
//
//	x  · x = v0
//	v0 · x = v1
//	(v1 + x + 5u) · u = y
//	0 = 0 (padding)
func CubicShape() *Shape {
	one := fr.One()
	var five fr.Element
	five.SetUint64(5)

	a := Matrix{
		{{Col: 0, Coeff: one}},
		{{Col: 1, Coeff: one}},
		{{Col: 2, Coeff: one}, {Col: 0, Coeff: one}, {Col: 3, Coeff: five}},
		{},
	}
	b := Matrix{
		{{Col: 0, Coeff: one}},
		{{Col: 0, Coeff: one}},
		{{Col: 3, Coeff: one}},
		{},
	}
	c := Matrix{
		{{Col: 1, Coeff: one}},
		{{Col: 2, Coeff: one}},
		{{Col: 4, Coeff: one}},
		{},
	}

	s, err := NewShape(4, 3, 1, a, b, c)
	if err != nil {
		panic(err) // static shape, cannot fail
	}
	return s
}

// CubicAssignment returns a satisfying witness and public input for
// CubicShape at the given x
func CubicAssignment(x uint64) (*Witness, []fr.Element) {
	var xe, v0, v1, y, five fr.Element
	xe.SetUint64(x)
	five.SetUint64(5)

	v0.Mul(&xe, &xe)
	v1.Mul(&v0, &xe)
	y.Add(&v1, &xe)
	y.Add(&y, &five)

	return &Witness{W: []fr.Element{xe, v0, v1}}, []fr.Element{y}
}

// SingleConstraintShape returns the 1-constraint system x · x = y, the
// boundary case where the hypercube has dimension zero
func SingleConstraintShape() *Shape {
	one := fr.One()

	a := Matrix{{{Col: 0, Coeff: one}}}
	b := Matrix{{{Col: 0, Coeff: one}}}
	c := Matrix{{{Col: 2, Coeff: one}}}

	s, err := NewShape(1, 1, 1, a, b, c)
	if err != nil {
		panic(err)
	}
	return s
}

// SingleConstraintAssignment returns a satisfying pair for SingleConstraintShape
func SingleConstraintAssignment(x uint64) (*Witness, []fr.Element) {
	var xe, y fr.Element
	xe.SetUint64(x)
	y.Mul(&xe, &xe)
	return &Witness{W: []fr.Element{xe}}, []fr.Element{y}
}
