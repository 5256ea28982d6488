package nifs

import (
	"io"
	"math/big"

	"github.com/consensys/zerofold/pedersen"
	"github.com/consensys/zerofold/poly"
	"github.com/consensys/zerofold/r1cs"
	"github.com/consensys/zerofold/transcript"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Challenge labels of the folding transcript, in squeeze order (the sumfold
// engine appends its own)
const (
	ChallengeTau   = "tau"
	ChallengeGamma = "gamma"
)

// reduceProve is the prover side of the zero-check reduction. It squeezes
// the zero-check challenge τ before anything derived in this call is
// absorbed, so the prover cannot pick τ after seeing its own outputs. It
// then commits to the power table of τ and derives the three sub-claim
// pairs fed to sumfold: the fresh constraint claim, the fresh
// power-consistency claim, and the carried power commitment for the next
// fold.
func reduceProve(
	ck *pedersen.Key,
	t *transcript.Transcript,
	zcU PowCommitInstance,
	zcW PowCommitWitness,
	u2 *r1cs.Instance,
	w2 *r1cs.Witness,
	ell int,
	rng io.Reader,
) (cu ConstraintInstance, cw ConstraintWitness, pu PowCheckInstance, pw PowCheckWitness, newZcU PowCommitInstance, newZcW PowCommitWitness, err error) {

	tau, err := t.Squeeze(ChallengeTau)
	if err != nil {
		return
	}

	e := poly.PowTable(tau, ell)
	rE, err := randomScalar(rng)
	if err != nil {
		return
	}
	commE, err := ck.Commit(e, rE)
	if err != nil {
		return
	}
	if err = t.Absorb(commE.Marshal()); err != nil {
		return
	}

	h1, h2 := poly.PowMasks(tau, ell)
	cu = ConstraintInstance{U: u2, CommE: commE}
	cw = ConstraintWitness{W: w2, E: e, H1: h1, H2: h2, RE: rE}

	// the previous power table is well formed by the carried invariant, so
	// its split supplies the masks of the new table's consistency claim.
	// Each witness gets its own copy of the shared tables: MultiLin folding
	// is in place, so aliased views would corrupt each other.
	oldH1, oldH2 := poly.PowMasks(zcU.Tau, ell)
	pu = PowCheckInstance{CommOld: zcU.CommE, Tau: tau, CommNew: commE}
	pw = PowCheckWitness{
		Old:     zcW.E.DeepCopy(),
		New:     e.DeepCopy(),
		Shifted: poly.ShiftedPowTable(tau, ell),
		H1:      oldH1,
		H2:      oldH2,
		ROld:    zcW.RE,
		RNew:    rE,
	}

	newZcU = PowCommitInstance{CommE: commE, Tau: tau}
	newZcW = PowCommitWitness{E: e.DeepCopy(), RE: rE}
	return
}

// reduceVerify mirrors reduceProve on the instance side only: same challenge
// derivation and absorption order, with the power commitment supplied by the
// proof instead of computed.
func reduceVerify(
	t *transcript.Transcript,
	zcU PowCommitInstance,
	u2 *r1cs.Instance,
	commE pedersen.Commitment,
) (cu ConstraintInstance, pu PowCheckInstance, newZcU PowCommitInstance, err error) {

	tau, err := t.Squeeze(ChallengeTau)
	if err != nil {
		return
	}
	if err = t.Absorb(commE.Marshal()); err != nil {
		return
	}

	cu = ConstraintInstance{U: u2, CommE: commE}
	pu = PowCheckInstance{CommOld: zcU.CommE, Tau: tau, CommNew: commE}
	newZcU = PowCommitInstance{CommE: commE, Tau: tau}
	return
}

// randomScalar draws a blinding scalar from the injected randomness source.
// Oversampling by 128 bits keeps the modular reduction bias negligible.
func randomScalar(rng io.Reader) (fr.Element, error) {
	var buf [fr.Bytes + 16]byte
	var e fr.Element
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return e, err
	}
	e.SetBigInt(new(big.Int).SetBytes(buf[:]))
	return e, nil
}
