package nifs

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/consensys/zerofold/logger"
	"github.com/consensys/zerofold/pedersen"
	"github.com/consensys/zerofold/poly"
	"github.com/consensys/zerofold/r1cs"
	"github.com/consensys/zerofold/sumfold"
	"github.com/consensys/zerofold/transcript"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrProofVerify is returned when a folding proof fails verification
var ErrProofVerify = errors.New("nifs: invalid folding proof")

const protocolLabel = "zerofold-nifs-v1"

// Proof lets a verifier fold one fresh instance into the running accumulator
// in time independent of the constraint-system size
type Proof struct {
	CommE pedersen.Commitment // commitment to the fold's power table
	SF    sumfold.Proof
	T     fr.Element // final constraint-relation evaluation at r_b
	TPc   fr.Element // final power-consistency evaluation at r_b
}

func newTranscript() *transcript.Transcript {
	return transcript.New(protocolLabel,
		ChallengeTau,
		ChallengeGamma,
		sumfold.ChallengeRho,
		sumfold.ChallengeRb,
	)
}

// Prove folds (u2, w2) into the running accumulator (u1, w1) and returns the
// proof together with the new accumulator. Blinding randomness is drawn from
// rng; production callers pass crypto/rand.Reader. The inputs are left
// intact: each fold produces an independent accumulator value.
func Prove(
	s *r1cs.Shape,
	ck *pedersen.Key,
	u1 *RunningInstance, w1 *RunningWitness,
	u2 *r1cs.Instance, w2 *r1cs.Witness,
	rng io.Reader,
) (*Proof, *RunningInstance, *RunningWitness, error) {

	log := logger.Logger().With().Str("protocol", "nifs").Int("nbCons", s.NbCons).Logger()
	start := time.Now()

	t := newTranscript()
	if err := u2.Absorb(t); err != nil {
		return nil, nil, nil, err
	}

	// reduce the fresh pair and the carried power commitment into the three
	// sub-claim pairs
	cu, cw, pu, pw, newZcU, newZcW, err := reduceProve(ck, t, u1.PowCommit, w1.PowCommit, u2, w2, s.Ell(), rng)
	if err != nil {
		return nil, nil, nil, err
	}

	// assemble the sumfold input tables on both sides
	g, err := constraintInputs(s, u1.Constraint.U, &w1.Constraint)
	if err != nil {
		return nil, nil, nil, err
	}
	h, err := constraintInputs(s, cu.U, &cw)
	if err != nil {
		return nil, nil, nil, err
	}
	gPc := powCheckInputs(&u1.PowCheck, &w1.PowCheck)
	hPc := powCheckInputs(&pu, &pw)

	gamma, err := t.Squeeze(ChallengeGamma)
	if err != nil {
		return nil, nil, nil, err
	}

	sfProof, rb, T, TPc, err := sumfold.Prove(t,
		g, h, u1.Constraint.T, R1CSIntegrand{},
		gPc, hPc, u1.PowCheck.T, PowIntegrand{},
		gamma,
	)
	if err != nil {
		return nil, nil, nil, err
	}

	// send the final evaluations to the verifier
	if err := t.AbsorbScalars(T, TPc); err != nil {
		return nil, nil, nil, err
	}

	proof := &Proof{CommE: newZcU.CommE, SF: sfProof, T: T, TPc: TPc}
	u := u1.Fold(&cu, rb, T, &pu, TPc, newZcU)
	w := w1.Fold(&cw, rb, &pw, newZcW)

	log.Debug().Dur("took", time.Since(start)).Msg("fold proved")
	return proof, u, w, nil
}

// Verify checks the proof against the running and fresh instances and
// returns the new running instance. It runs in time independent of the
// constraint-system size.
func (p *Proof) Verify(u1 *RunningInstance, u2 *r1cs.Instance) (*RunningInstance, error) {

	log := logger.Logger().With().Str("protocol", "nifs").Logger()
	start := time.Now()

	t := newTranscript()
	if err := u2.Absorb(t); err != nil {
		return nil, err
	}

	cu, pu, newZcU, err := reduceVerify(t, u1.PowCommit, u2, p.CommE)
	if err != nil {
		return nil, err
	}

	gamma, err := t.Squeeze(ChallengeGamma)
	if err != nil {
		return nil, err
	}

	// the batched claim folds both running error terms; the fresh side's
	// claims are zero by construction
	var combined, zero fr.Element
	combined.Mul(&gamma, &u1.PowCheck.T)
	combined.Add(&combined, &u1.Constraint.T)

	c, rho, rb, err := p.SF.Verify(t, combined, zero, R1CSIntegrand{}, PowIntegrand{})
	if err != nil {
		if errors.Is(err, sumfold.ErrProofRejected) {
			return nil, fmt.Errorf("%w: %v", ErrProofVerify, err)
		}
		return nil, err
	}

	if err := t.AbsorbScalars(p.T, p.TPc); err != nil {
		return nil, err
	}

	// recover the un-weighted combined claim: T_γ = c·eq(ρ, r_b)⁻¹. A zero
	// eq evaluation can be forced by a malicious proof, so it is a
	// verification failure, not a panic.
	eq := poly.EvalEq([]fr.Element{rho}, []fr.Element{rb})
	if eq.IsZero() {
		return nil, fmt.Errorf("%w: equality polynomial vanishes at the folding point", ErrProofVerify)
	}
	var tGamma, expected fr.Element
	tGamma.Inverse(&eq)
	tGamma.Mul(&tGamma, &c)

	expected.Mul(&gamma, &p.TPc)
	expected.Add(&expected, &p.T)

	if !tGamma.Equal(&expected) {
		return nil, fmt.Errorf("%w: T_γ mismatch", ErrProofVerify)
	}

	u := u1.Fold(&cu, rb, p.T, &pu, p.TPc, newZcU)

	log.Debug().Dur("took", time.Since(start)).Msg("fold verified")
	return u, nil
}
