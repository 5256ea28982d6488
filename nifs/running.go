// Package nifs implements the non-interactive folding scheme: it folds one
// fresh R1CS instance/witness pair per step into a running accumulator, with
// verifier work independent of the constraint-system size. The accumulator
// carries three paired sub-claims: the constraint claim (a relaxed zero-check
// of Az ∘ Bz − Cz weighted by a power polynomial), the power-consistency
// claim (the committed power polynomial is a geometric τ-progression) and the
// power-commitment carry (the state needed to open the next fold's
// power-consistency claim).
package nifs

import (
	"errors"
	"fmt"

	"github.com/consensys/zerofold/pedersen"
	"github.com/consensys/zerofold/poly"
	"github.com/consensys/zerofold/r1cs"
	"github.com/consensys/zerofold/sumfold"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrAccumulatorInvalid is returned by Decide when an accumulator's claims
// or commitment openings do not hold
var ErrAccumulatorInvalid = errors.New("nifs: accumulator does not satisfy its claims")

// ConstraintInstance claims that the wrapped R1CS instance holds up to the
// accumulated error T, weighted by the power polynomial committed in CommE
type ConstraintInstance struct {
	T     fr.Element
	U     *r1cs.Instance
	CommE pedersen.Commitment
}

// ConstraintWitness opens a ConstraintInstance. H1 and H2 are the masking
// tables of the weighted zero-check; for a fresh claim they are the tensor
// split of E, and folding replaces them with their mix at the folding point.
type ConstraintWitness struct {
	W      *r1cs.Witness
	E      poly.MultiLin
	H1, H2 poly.MultiLin
	RE     fr.Element
}

// PowCheckInstance claims, up to the accumulated error T, that the table
// committed in CommNew is the power table of Tau. CommOld is the previous
// fold's power commitment: its opening supplies the claim's masking tables.
type PowCheckInstance struct {
	T       fr.Element
	CommOld pedersen.Commitment
	Tau     fr.Element
	CommNew pedersen.Commitment
}

// PowCheckWitness opens a PowCheckInstance. Shifted holds the new table
// advanced by one power (entry i is the (i+1)-th power for a fresh claim):
// the relation (shifted − new·τ) vanishes entry-wise exactly on geometric
// progressions. Shifted and the masks are witness material folded linearly.
type PowCheckWitness struct {
	Old, New   poly.MultiLin
	Shifted    poly.MultiLin
	H1, H2     poly.MultiLin
	ROld, RNew fr.Element
}

// PowCommitInstance is the carried-forward power commitment: the minimal
// state needed to derive the next fold's power-consistency claim
type PowCommitInstance struct {
	CommE pedersen.Commitment
	Tau   fr.Element
}

// PowCommitWitness opens a PowCommitInstance. The invariant maintained by
// every fold is E = PowTable(Tau, ell).
type PowCommitWitness struct {
	E  poly.MultiLin
	RE fr.Element
}

// RunningInstance is the public half of the accumulator
type RunningInstance struct {
	Constraint ConstraintInstance
	PowCheck   PowCheckInstance
	PowCommit  PowCommitInstance
}

// RunningWitness is the secret half of the accumulator
type RunningWitness struct {
	Constraint ConstraintWitness
	PowCheck   PowCheckWitness
	PowCommit  PowCommitWitness
}

// Genesis creates the initial accumulator: zero error claims, the trivial
// constraint instance, and the power state pinned at τ = 1 with zero
// blinding. The commitment key must have capacity for both the witness size
// and the number of constraints.
func Genesis(s *r1cs.Shape, ck *pedersen.Key) (*RunningInstance, *RunningWitness, error) {
	ell := s.Ell()
	one := fr.One()

	e := poly.PowTable(one, ell)
	h1, h2 := poly.PowMasks(one, ell)

	var zero fr.Element
	commE, err := ck.Commit(e, zero)
	if err != nil {
		return nil, nil, err
	}

	trivialU, err := s.TrivialInstance(ck)
	if err != nil {
		return nil, nil, err
	}
	trivialW := s.TrivialWitness()

	u := &RunningInstance{
		Constraint: ConstraintInstance{U: trivialU, CommE: commE},
		PowCheck: PowCheckInstance{
			CommOld: commE,
			Tau:     one,
			CommNew: commE,
		},
		PowCommit: PowCommitInstance{CommE: commE, Tau: one},
	}
	w := &RunningWitness{
		Constraint: ConstraintWitness{W: trivialW, E: e, H1: h1, H2: h2},
		PowCheck: PowCheckWitness{
			Old:     e,
			New:     e.DeepCopy(),
			Shifted: poly.ShiftedPowTable(one, ell),
			H1:      h1.DeepCopy(),
			H2:      h2.DeepCopy(),
		},
		PowCommit: PowCommitWitness{E: e.DeepCopy()},
	}
	return u, w, nil
}

// Fold recombines the accumulator with the reduced fresh claims at the
// folding point rb. T and TPc become the new error claims, and the new
// power-commitment carry is adopted as-is. The receiver is left intact.
func (u *RunningInstance) Fold(
	cu *ConstraintInstance, rb, T fr.Element,
	pu *PowCheckInstance, TPc fr.Element,
	zc PowCommitInstance,
) *RunningInstance {
	return &RunningInstance{
		Constraint: ConstraintInstance{
			T:     T,
			U:     u.Constraint.U.Fold(cu.U, rb),
			CommE: pedersen.Mix(u.Constraint.CommE, cu.CommE, rb),
		},
		PowCheck: PowCheckInstance{
			T:       TPc,
			CommOld: pedersen.Mix(u.PowCheck.CommOld, pu.CommOld, rb),
			Tau:     poly.MixScalar(u.PowCheck.Tau, pu.Tau, rb),
			CommNew: pedersen.Mix(u.PowCheck.CommNew, pu.CommNew, rb),
		},
		PowCommit: zc,
	}
}

// Fold is the witness-side recombination matching RunningInstance.Fold
func (w *RunningWitness) Fold(
	cw *ConstraintWitness, rb fr.Element,
	pw *PowCheckWitness,
	zc PowCommitWitness,
) *RunningWitness {
	return &RunningWitness{
		Constraint: ConstraintWitness{
			W:  w.Constraint.W.Fold(cw.W, rb),
			E:  poly.Mix(w.Constraint.E, cw.E, rb),
			H1: poly.Mix(w.Constraint.H1, cw.H1, rb),
			H2: poly.Mix(w.Constraint.H2, cw.H2, rb),
			RE: poly.MixScalar(w.Constraint.RE, cw.RE, rb),
		},
		PowCheck: PowCheckWitness{
			Old:     poly.Mix(w.PowCheck.Old, pw.Old, rb),
			New:     poly.Mix(w.PowCheck.New, pw.New, rb),
			Shifted: poly.Mix(w.PowCheck.Shifted, pw.Shifted, rb),
			H1:      poly.Mix(w.PowCheck.H1, pw.H1, rb),
			H2:      poly.Mix(w.PowCheck.H2, pw.H2, rb),
			ROld:    poly.MixScalar(w.PowCheck.ROld, pw.ROld, rb),
			RNew:    poly.MixScalar(w.PowCheck.RNew, pw.RNew, rb),
		},
		PowCommit: zc,
	}
}

// Equal compares two running instances field-wise
func (u *RunningInstance) Equal(o *RunningInstance) bool {
	return u.Constraint.T.Equal(&o.Constraint.T) &&
		u.Constraint.U.Equal(o.Constraint.U) &&
		u.Constraint.CommE.Equal(o.Constraint.CommE) &&
		u.PowCheck.T.Equal(&o.PowCheck.T) &&
		u.PowCheck.CommOld.Equal(o.PowCheck.CommOld) &&
		u.PowCheck.Tau.Equal(&o.PowCheck.Tau) &&
		u.PowCheck.CommNew.Equal(o.PowCheck.CommNew) &&
		u.PowCommit.CommE.Equal(o.PowCommit.CommE) &&
		u.PowCommit.Tau.Equal(&o.PowCommit.Tau)
}

// Decide is the full check of an accumulator: it opens every commitment
// against the witness and recomputes both hypercube sums against the claimed
// error terms. This is the only size-dependent verification in the scheme
// and runs once, at the end of a folding chain.
func Decide(s *r1cs.Shape, ck *pedersen.Key, u *RunningInstance, w *RunningWitness) error {
	// commitment openings
	openings := []struct {
		name     string
		v        []fr.Element
		blinding fr.Element
		comm     pedersen.Commitment
	}{
		{"constraint witness", w.Constraint.W.W, w.Constraint.W.RW, u.Constraint.U.CommW},
		{"constraint power table", w.Constraint.E, w.Constraint.RE, u.Constraint.CommE},
		{"old power table", w.PowCheck.Old, w.PowCheck.ROld, u.PowCheck.CommOld},
		{"new power table", w.PowCheck.New, w.PowCheck.RNew, u.PowCheck.CommNew},
		{"carried power table", w.PowCommit.E, w.PowCommit.RE, u.PowCommit.CommE},
	}
	for _, o := range openings {
		c, err := ck.Commit(o.v, o.blinding)
		if err != nil {
			return err
		}
		if !c.Equal(o.comm) {
			return fmt.Errorf("%w: %v commitment does not open", ErrAccumulatorInvalid, o.name)
		}
	}

	// the carried power table must be the honest power table of its τ
	honest := poly.PowTable(u.PowCommit.Tau, s.Ell())
	for i := range honest {
		if !honest[i].Equal(&w.PowCommit.E[i]) {
			return fmt.Errorf("%w: carried power table is malformed at entry %v", ErrAccumulatorInvalid, i)
		}
	}

	// recompute the two hypercube sums
	in, err := constraintInputs(s, u.Constraint.U, &w.Constraint)
	if err != nil {
		return err
	}
	sum := sumRelation(&in, R1CSIntegrand{})
	if !sum.Equal(&u.Constraint.T) {
		return fmt.Errorf("%w: constraint sum is %v, claimed %v", ErrAccumulatorInvalid, sum.String(), u.Constraint.T.String())
	}

	inPc := powCheckInputs(&u.PowCheck, &w.PowCheck)
	sum = sumRelation(&inPc, PowIntegrand{})
	if !sum.Equal(&u.PowCheck.T) {
		return fmt.Errorf("%w: power-consistency sum is %v, claimed %v", ErrAccumulatorInvalid, sum.String(), u.PowCheck.T.String())
	}

	return nil
}

// sumRelation computes the plain hypercube sum of a relation over one bundle
func sumRelation(in *sumfold.Inputs, rel sumfold.Relation) fr.Element {
	var res, v fr.Element
	args := make([]*fr.Element, 5)

	for x := range in[0] {
		for k := 0; k < 5; k++ {
			args[k] = &in[k][x]
		}
		rel.Eval(&v, args...)
		res.Add(&res, &v)
	}
	return res
}
