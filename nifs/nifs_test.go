package nifs

import (
	"io"
	"testing"

	"github.com/consensys/zerofold/common"
	"github.com/consensys/zerofold/pedersen"
	"github.com/consensys/zerofold/r1cs"
	"github.com/consensys/zerofold/sumfold"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

// testRng returns a deterministic blinding source so that runs are
// reproducible. Production callers use crypto/rand.Reader.
func testRng(seed string) io.Reader {
	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, nil)
	if err != nil {
		panic(err)
	}
	if _, err := xof.Write([]byte(seed)); err != nil {
		panic(err)
	}
	return xof
}

func testSetup(t *testing.T) (*r1cs.Shape, *pedersen.Key) {
	t.Helper()
	s := r1cs.CubicShape()
	ck, err := pedersen.NewKey(common.Max(s.NbCons, s.NbVars))
	require.NoError(t, err)
	return s, ck
}

func freshPair(t *testing.T, s *r1cs.Shape, ck *pedersen.Key, x uint64) (*r1cs.Instance, *r1cs.Witness) {
	t.Helper()
	w, pub := r1cs.CubicAssignment(x)
	w.RW = common.RandomFrArray(1)[0]
	u, err := s.NewInstance(ck, w, pub)
	require.NoError(t, err)
	require.NoError(t, s.IsSat(u, w))
	return u, w
}

func TestGenesisDecides(t *testing.T) {
	s, ck := testSetup(t)
	u, w, err := Genesis(s, ck)
	require.NoError(t, err)
	require.NoError(t, Decide(s, ck, u, w))

	assert.True(t, u.Constraint.T.IsZero(), "genesis error claims are exactly zero")
	assert.True(t, u.PowCheck.T.IsZero())
}

func TestFoldOnce(t *testing.T) {
	s, ck := testSetup(t)
	u1, w1, err := Genesis(s, ck)
	require.NoError(t, err)
	u2, w2 := freshPair(t, s, ck, 3)

	proof, uP, wP, err := Prove(s, ck, u1, w1, u2, w2, testRng("fold-once"))
	require.NoError(t, err)

	uV, err := proof.Verify(u1, u2)
	require.NoError(t, err)
	assert.True(t, uP.Equal(uV), "prover and verifier compute the same folded instance")

	require.NoError(t, Decide(s, ck, uP, wP))
}

func TestFoldChain(t *testing.T) {
	s, ck := testSetup(t)
	u, w, err := Genesis(s, ck)
	require.NoError(t, err)

	rng := testRng("fold-chain")
	for _, x := range []uint64{2, 3, 7, 11} {
		u2, w2 := freshPair(t, s, ck, x)

		proof, uP, wP, err := Prove(s, ck, u, w, u2, w2, rng)
		require.NoError(t, err)

		uV, err := proof.Verify(u, u2)
		require.NoError(t, err)
		require.True(t, uP.Equal(uV), "fold of x = %v", x)

		u, w = uP, wP
		require.NoError(t, Decide(s, ck, u, w), "accumulator after folding x = %v", x)
	}
}

func TestFoldTrivialInstance(t *testing.T) {
	// folding the trivial u = 0 instance keeps the accumulator valid
	s, ck := testSetup(t)
	u1, w1, err := Genesis(s, ck)
	require.NoError(t, err)

	u2, err := s.TrivialInstance(ck)
	require.NoError(t, err)
	w2 := s.TrivialWitness()

	proof, uP, wP, err := Prove(s, ck, u1, w1, u2, w2, testRng("fold-trivial"))
	require.NoError(t, err)

	uV, err := proof.Verify(u1, u2)
	require.NoError(t, err)
	require.True(t, uP.Equal(uV))
	require.NoError(t, Decide(s, ck, uP, wP))

	// the trivially-satisfied fold accumulates no constraint error
	assert.True(t, uP.Constraint.T.IsZero())
}

func TestFoldSingleConstraint(t *testing.T) {
	// dimension-zero hypercube: one constraint, tables of size one
	s := r1cs.SingleConstraintShape()
	ck, err := pedersen.NewKey(common.Max(s.NbCons, s.NbVars))
	require.NoError(t, err)

	u1, w1, err := Genesis(s, ck)
	require.NoError(t, err)

	w2, pub := r1cs.SingleConstraintAssignment(4)
	w2.RW = common.RandomFrArray(1)[0]
	u2, err := s.NewInstance(ck, w2, pub)
	require.NoError(t, err)

	proof, uP, wP, err := Prove(s, ck, u1, w1, u2, w2, testRng("fold-single"))
	require.NoError(t, err)

	uV, err := proof.Verify(u1, u2)
	require.NoError(t, err)
	require.True(t, uP.Equal(uV))
	require.NoError(t, Decide(s, ck, uP, wP))
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	s, ck := testSetup(t)
	u1, w1, err := Genesis(s, ck)
	require.NoError(t, err)
	u2, w2 := freshPair(t, s, ck, 3)

	proof, _, _, err := Prove(s, ck, u1, w1, u2, w2, testRng("tamper"))
	require.NoError(t, err)

	one := fr.One()
	_, _, g1, _ := bn254.Generators()

	tamper := map[string]func(p *Proof){
		"constraint evaluation": func(p *Proof) { p.T.Add(&p.T, &one) },
		"power evaluation":      func(p *Proof) { p.TPc.Add(&p.TPc, &one) },
		"power commitment":      func(p *Proof) { p.CommE.P.Add(&p.CommE.P, &g1) },
		"missing round polynomial": func(p *Proof) { p.SF = sumfold.Proof{} },
		"round polynomial": func(p *Proof) {
			coeffs := make([]fr.Element, len(p.SF.Coeffs))
			copy(coeffs, p.SF.Coeffs)
			coeffs[0].Add(&coeffs[0], &one)
			p.SF.Coeffs = coeffs
		},
	}

	for name, corrupt := range tamper {
		bad := *proof
		corrupt(&bad)
		_, err := bad.Verify(u1, u2)
		require.ErrorIs(t, err, ErrProofVerify, "tampered %v", name)
	}
}

func TestReductionCopiesTables(t *testing.T) {
	// the reduction hands the new power table to three witnesses; each must
	// own its copy since table folding mutates in place
	s, ck := testSetup(t)
	u1, w1, err := Genesis(s, ck)
	require.NoError(t, err)
	u2, w2 := freshPair(t, s, ck, 3)

	_, cw, _, pw, _, newZcW, err := reduceProve(ck, newTranscript(), u1.PowCommit, w1.PowCommit, u2, w2, s.Ell(), testRng("reduction-copies"))
	require.NoError(t, err)

	require.NotSame(t, &cw.E[0], &pw.New[0])
	require.NotSame(t, &pw.New[0], &newZcW.E[0])
	require.NotSame(t, &cw.E[0], &newZcW.E[0])
	require.NotSame(t, &pw.Old[0], &w1.PowCommit.E[0])
}

func TestProveIsDeterministic(t *testing.T) {
	s, ck := testSetup(t)

	run := func() (*Proof, *RunningInstance) {
		u1, w1, err := Genesis(s, ck)
		require.NoError(t, err)
		w2, pub := r1cs.CubicAssignment(3)
		u2, err := s.NewInstance(ck, w2, pub)
		require.NoError(t, err)

		proof, uP, _, err := Prove(s, ck, u1, w1, u2, w2, testRng("deterministic"))
		require.NoError(t, err)
		return proof, uP
	}

	p1, u1 := run()
	p2, u2 := run()

	assert.True(t, p1.T.Equal(&p2.T))
	assert.True(t, p1.TPc.Equal(&p2.TPc))
	assert.True(t, p1.CommE.Equal(p2.CommE))
	require.Equal(t, len(p1.SF.Coeffs), len(p2.SF.Coeffs))
	for i := range p1.SF.Coeffs {
		assert.True(t, p1.SF.Coeffs[i].Equal(&p2.SF.Coeffs[i]), "coefficient %v", i)
	}
	assert.True(t, u1.Equal(u2))
}

func BenchmarkFold(b *testing.B) {
	s := r1cs.CubicShape()
	ck, err := pedersen.NewKey(common.Max(s.NbCons, s.NbVars))
	if err != nil {
		b.Fatal(err)
	}
	u1, w1, err := Genesis(s, ck)
	if err != nil {
		b.Fatal(err)
	}
	w2, pub := r1cs.CubicAssignment(3)
	u2, err := s.NewInstance(ck, w2, pub)
	if err != nil {
		b.Fatal(err)
	}

	rng := testRng("bench")
	b.ResetTimer()
	common.ProfileTrace(b, false, false, func() {
		for i := 0; i < b.N; i++ {
			if _, _, _, err := Prove(s, ck, u1, w1, u2, w2, rng); err != nil {
				b.Fatal(err)
			}
		}
	})
}
