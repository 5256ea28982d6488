// Package r1cs holds the constraint-system collaborator of the folding
// scheme: a sparse R1CS shape Az ∘ Bz = Cz over the assignment
// z = (W, u, X), where W is the secret witness, u the relaxation scalar and
// X the public inputs. Fresh instances have u = 1; the genesis accumulator
// uses the trivial instance with u = 0 and an all-zero witness so that its
// error claims are exactly zero.
package r1cs

import (
	"errors"
	"fmt"

	"github.com/consensys/zerofold/common"
	"github.com/consensys/zerofold/pedersen"
	"github.com/consensys/zerofold/poly"
	"github.com/consensys/zerofold/transcript"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrNotSatisfied is returned by IsSat when a constraint does not hold
var ErrNotSatisfied = errors.New("r1cs: constraint system is not satisfied")

// Term is one nonzero coefficient of a constraint row
type Term struct {
	Col   int
	Coeff fr.Element
}

// Matrix is a sparse matrix, one term list per constraint row
type Matrix [][]Term

// Shape is the structure of a constraint system: the three sparse matrices
// and the dimensions of the assignment. The number of constraints is padded
// to a power of two so that constraint indices form a boolean hypercube.
type Shape struct {
	NbCons   int // number of constraints, always a power of two
	NbVars   int // number of secret witness variables
	NbPublic int // number of public inputs
	A, B, C  Matrix
}

// Instance is the public half of a constraint-system claim
type Instance struct {
	CommW pedersen.Commitment
	U     fr.Element
	X     []fr.Element
}

// Witness is the secret half of a constraint-system claim
type Witness struct {
	W  []fr.Element
	RW fr.Element // blinding of CommW
}

// NewShape pads the matrices to a power-of-two number of constraints
func NewShape(nbCons, nbVars, nbPublic int, a, b, c Matrix) (*Shape, error) {
	if len(a) != nbCons || len(b) != nbCons || len(c) != nbCons {
		return nil, fmt.Errorf("r1cs: matrices have %v/%v/%v rows, want %v", len(a), len(b), len(c), nbCons)
	}

	padded := common.NextPowerOfTwo(nbCons)
	s := &Shape{
		NbCons:   padded,
		NbVars:   nbVars,
		NbPublic: nbPublic,
		A:        make(Matrix, padded),
		B:        make(Matrix, padded),
		C:        make(Matrix, padded),
	}
	copy(s.A, a)
	copy(s.B, b)
	copy(s.C, c)

	nbz := s.NbZ()
	for _, m := range []Matrix{s.A, s.B, s.C} {
		for _, row := range m {
			for _, t := range row {
				if t.Col >= nbz {
					return nil, fmt.Errorf("r1cs: column %v out of range (assignment has %v entries)", t.Col, nbz)
				}
			}
		}
	}
	return s, nil
}

// NbZ returns the length of the full assignment (W, u, X)
func (s *Shape) NbZ() int {
	return s.NbVars + 1 + s.NbPublic
}

// Ell returns the log2 of the number of constraints
func (s *Shape) Ell() int {
	return common.Log2Ceil(s.NbCons)
}

// Z assembles the full assignment (W, u, X) of an instance/witness pair
func (s *Shape) Z(u *Instance, w *Witness) []fr.Element {
	z := make([]fr.Element, 0, s.NbZ())
	z = append(z, w.W...)
	z = append(z, u.U)
	z = append(z, u.X...)
	return z
}

// MultiplyVec computes the three matrix-vector products Az, Bz, Cz
func (s *Shape) MultiplyVec(z []fr.Element) (az, bz, cz poly.MultiLin, err error) {
	if len(z) != s.NbZ() {
		return nil, nil, nil, fmt.Errorf("r1cs: assignment has %v entries, want %v", len(z), s.NbZ())
	}

	az = make(poly.MultiLin, s.NbCons)
	bz = make(poly.MultiLin, s.NbCons)
	cz = make(poly.MultiLin, s.NbCons)

	common.Parallelize(s.NbCons, func(start, stop int) {
		var tmp fr.Element
		for i := start; i < stop; i++ {
			for _, t := range s.A[i] {
				tmp.Mul(&t.Coeff, &z[t.Col])
				az[i].Add(&az[i], &tmp)
			}
			for _, t := range s.B[i] {
				tmp.Mul(&t.Coeff, &z[t.Col])
				bz[i].Add(&bz[i], &tmp)
			}
			for _, t := range s.C[i] {
				tmp.Mul(&t.Coeff, &z[t.Col])
				cz[i].Add(&cz[i], &tmp)
			}
		}
	})

	return az, bz, cz, nil
}

// NewInstance commits to the witness and wraps the public inputs with u = 1
func (s *Shape) NewInstance(ck *pedersen.Key, w *Witness, x []fr.Element) (*Instance, error) {
	if len(w.W) != s.NbVars {
		return nil, fmt.Errorf("r1cs: witness has %v entries, want %v", len(w.W), s.NbVars)
	}
	if len(x) != s.NbPublic {
		return nil, fmt.Errorf("r1cs: public input has %v entries, want %v", len(x), s.NbPublic)
	}

	comm, err := ck.Commit(w.W, w.RW)
	if err != nil {
		return nil, err
	}

	var one fr.Element
	one.SetOne()
	return &Instance{CommW: comm, U: one, X: x}, nil
}

// TrivialInstance returns the u = 0, all-zero instance used at genesis
func (s *Shape) TrivialInstance(ck *pedersen.Key) (*Instance, error) {
	w := s.TrivialWitness()
	comm, err := ck.Commit(w.W, w.RW)
	if err != nil {
		return nil, err
	}
	return &Instance{CommW: comm, X: make([]fr.Element, s.NbPublic)}, nil
}

// TrivialWitness returns the all-zero witness of the trivial instance
func (s *Shape) TrivialWitness() *Witness {
	return &Witness{W: make([]fr.Element, s.NbVars)}
}

// IsSat checks Az ∘ Bz = Cz for the given pair. Only meaningful for fresh
// (u = 1) instances: folded instances carry their error in the accumulator.
func (s *Shape) IsSat(u *Instance, w *Witness) error {
	az, bz, cz, err := s.MultiplyVec(s.Z(u, w))
	if err != nil {
		return err
	}

	var tmp fr.Element
	for i := 0; i < s.NbCons; i++ {
		tmp.Mul(&az[i], &bz[i])
		if !tmp.Equal(&cz[i]) {
			return fmt.Errorf("%w: constraint %v", ErrNotSatisfied, i)
		}
	}
	return nil
}

// Fold returns the mix of two instances at r
func (u *Instance) Fold(o *Instance, r fr.Element) *Instance {
	return &Instance{
		CommW: pedersen.Mix(u.CommW, o.CommW, r),
		U:     poly.MixScalar(u.U, o.U, r),
		X:     poly.MixVec(u.X, o.X, r),
	}
}

// Fold returns the mix of two witnesses at r
func (w *Witness) Fold(o *Witness, r fr.Element) *Witness {
	return &Witness{
		W:  poly.MixVec(w.W, o.W, r),
		RW: poly.MixScalar(w.RW, o.RW, r),
	}
}

// Equal compares two instances field-wise
func (u *Instance) Equal(o *Instance) bool {
	if !u.CommW.Equal(o.CommW) || !u.U.Equal(&o.U) || len(u.X) != len(o.X) {
		return false
	}
	for i := range u.X {
		if !u.X[i].Equal(&o.X[i]) {
			return false
		}
	}
	return true
}

// Absorb feeds the instance to the transcript
func (u *Instance) Absorb(t *transcript.Transcript) error {
	if err := t.Absorb(u.CommW.Marshal()); err != nil {
		return err
	}
	if err := t.AbsorbScalars(u.U); err != nil {
		return err
	}
	return t.AbsorbScalars(u.X...)
}
