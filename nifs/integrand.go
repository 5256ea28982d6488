package nifs

import (
	"github.com/consensys/zerofold/poly"
	"github.com/consensys/zerofold/r1cs"
	"github.com/consensys/zerofold/sumfold"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// R1CSIntegrand is the constraint-relation integrand
// (az·bz − cz)·h1·h2. Its hypercube sum is the power-weighted zero-check
// Σ (Az ∘ Bz − Cz)_i·τ^i, which vanishes on satisfied instances.
type R1CSIntegrand struct{}

func (R1CSIntegrand) Eval(res *fr.Element, in ...*fr.Element) {
	res.Mul(in[0], in[1])
	res.Sub(res, in[2])
	res.Mul(res, in[3])
	res.Mul(res, in[4])
}

func (R1CSIntegrand) Degree() int { return 4 }

// PowIntegrand is the power-consistency integrand (g1 − g2·g3)·h1·h2,
// vanishing entry-wise exactly when each shifted entry equals the previous
// entry times τ.
type PowIntegrand struct{}

func (PowIntegrand) Eval(res *fr.Element, in ...*fr.Element) {
	var t fr.Element
	t.Mul(in[1], in[2])
	res.Sub(in[0], &t)
	res.Mul(res, in[3])
	res.Mul(res, in[4])
}

func (PowIntegrand) Degree() int { return 4 }

// constraintInputs assembles the sumfold tables of a constraint claim:
// the three matrix-vector products and the witness's masking tables
func constraintInputs(s *r1cs.Shape, u *r1cs.Instance, w *ConstraintWitness) (sumfold.Inputs, error) {
	az, bz, cz, err := s.MultiplyVec(s.Z(u, w.W))
	if err != nil {
		return sumfold.Inputs{}, err
	}
	return sumfold.Inputs{az, bz, cz, w.H1, w.H2}, nil
}

// powCheckInputs assembles the sumfold tables of a power-consistency claim:
// the shifted table, the new table, the constant-τ table and the masks
func powCheckInputs(u *PowCheckInstance, w *PowCheckWitness) sumfold.Inputs {
	g3 := make(poly.MultiLin, len(w.New))
	for i := range g3 {
		g3[i] = u.Tau
	}
	return sumfold.Inputs{w.Shifted, w.New, g3, w.H1, w.H2}
}
