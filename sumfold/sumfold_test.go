package sumfold

import (
	"testing"

	"github.com/consensys/zerofold/common"
	"github.com/consensys/zerofold/poly"
	"github.com/consensys/zerofold/transcript"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// product of all five tables, the highest-degree relation the domain allows
type prodRelation struct{}

func (prodRelation) Eval(res *fr.Element, in ...*fr.Element) {
	res.Mul(in[0], in[1])
	res.Mul(res, in[2])
	res.Mul(res, in[3])
	res.Mul(res, in[4])
}

func (prodRelation) Degree() int { return 5 }

// az·bz - cz masked by the last two tables, mirroring the constraint integrand
type maskedRelation struct{}

func (maskedRelation) Eval(res *fr.Element, in ...*fr.Element) {
	var tmp fr.Element
	res.Mul(in[0], in[1])
	res.Sub(res, in[2])
	tmp.Mul(in[3], in[4])
	res.Mul(res, &tmp)
}

func (maskedRelation) Degree() int { return 4 }

func randomInputs(n int) Inputs {
	var in Inputs
	for k := range in {
		in[k] = common.RandomFrArray(n)
	}
	return in
}

func hypercubeSum(in *Inputs, rel Relation) fr.Element {
	var res, v fr.Element
	args := make([]*fr.Element, len(in))
	for x := range in[0] {
		for k := range in {
			args[k] = &in[k][x]
		}
		rel.Eval(&v, args...)
		res.Add(&res, &v)
	}
	return res
}

func mixInputs(g, h *Inputs, r fr.Element) Inputs {
	var out Inputs
	for k := range out {
		out[k] = poly.Mix(g[k], h[k], r)
	}
	return out
}

func newTestTranscript() *transcript.Transcript {
	return transcript.New("sumfold-test", ChallengeRho, ChallengeRb)
}

func TestProveVerify(t *testing.T) {
	const n = 8
	g, h := randomInputs(n), randomInputs(n)
	gPc, hPc := randomInputs(n), randomInputs(n)
	rel, relPc := prodRelation{}, maskedRelation{}
	gamma := common.RandomFrArray(1)[0]

	claimLeft := hypercubeSum(&g, rel)
	claimLeftPc := hypercubeSum(&gPc, relPc)

	proof, rbP, T, TPc, err := Prove(newTestTranscript(),
		g, h, claimLeft, rel,
		gPc, hPc, claimLeftPc, relPc,
		gamma,
	)
	require.NoError(t, err)

	claimRight := hypercubeSum(&h, rel)
	claimRightPc := hypercubeSum(&hPc, relPc)

	var combined, target fr.Element
	combined.Mul(&gamma, &claimLeftPc)
	combined.Add(&combined, &claimLeft)
	target.Mul(&gamma, &claimRightPc)
	target.Add(&target, &claimRight)

	c, rho, rb, err := proof.Verify(newTestTranscript(), combined, target, rel, relPc)
	require.NoError(t, err)
	assert.True(t, rb.Equal(&rbP), "prover and verifier agree on the folding point")

	// c = eq(ρ, r_b)·(T + γ·T_pc)
	var expected fr.Element
	expected.Mul(&gamma, &TPc)
	expected.Add(&expected, &T)
	eq := poly.EvalEq([]fr.Element{rho}, []fr.Element{rb})
	expected.Mul(&expected, &eq)
	assert.True(t, c.Equal(&expected))

	// T and T_pc are the plain sums over the mixed tables
	mixed := mixInputs(&g, &h, rb)
	sum := hypercubeSum(&mixed, rel)
	assert.True(t, sum.Equal(&T))

	mixedPc := mixInputs(&gPc, &hPc, rb)
	sum = hypercubeSum(&mixedPc, relPc)
	assert.True(t, sum.Equal(&TPc))
}

func TestVerifyRejectsWrongClaim(t *testing.T) {
	const n = 4
	g, h := randomInputs(n), randomInputs(n)
	gPc, hPc := randomInputs(n), randomInputs(n)
	rel, relPc := prodRelation{}, maskedRelation{}
	gamma := common.RandomFrArray(1)[0]

	claimLeft := hypercubeSum(&g, rel)
	claimLeftPc := hypercubeSum(&gPc, relPc)

	proof, _, _, _, err := Prove(newTestTranscript(),
		g, h, claimLeft, rel,
		gPc, hPc, claimLeftPc, relPc,
		gamma,
	)
	require.NoError(t, err)

	claimRight := hypercubeSum(&h, rel)
	claimRightPc := hypercubeSum(&hPc, relPc)

	var combined, target fr.Element
	combined.Mul(&gamma, &claimLeftPc)
	combined.Add(&combined, &claimLeft)
	target.Mul(&gamma, &claimRightPc)
	target.Add(&target, &claimRight)

	// wrong initial claim
	var badClaim fr.Element
	badClaim.Add(&combined, &claimRight)
	_, _, _, err = proof.Verify(newTestTranscript(), badClaim, target, rel, relPc)
	require.ErrorIs(t, err, ErrProofRejected)

	// tampered round polynomial
	bad := Proof{Coeffs: make([]fr.Element, len(proof.Coeffs))}
	copy(bad.Coeffs, proof.Coeffs)
	one := fr.One()
	bad.Coeffs[0].Add(&bad.Coeffs[0], &one)
	_, _, _, err = bad.Verify(newTestTranscript(), combined, target, rel, relPc)
	require.ErrorIs(t, err, ErrProofRejected)
}

func TestVerifyRejectsMalformedCoefficients(t *testing.T) {
	rel, relPc := prodRelation{}, maskedRelation{}
	var combined, target fr.Element

	// empty round polynomial must not reach the evaluation code
	empty := Proof{}
	_, _, _, err := empty.Verify(newTestTranscript(), combined, target, rel, relPc)
	require.ErrorIs(t, err, ErrProofRejected)

	// a round polynomial above the degree bound is rejected too
	over := Proof{Coeffs: common.RandomFrArray(common.Max(rel.Degree(), relPc.Degree()) + 3)}
	_, _, _, err = over.Verify(newTestTranscript(), combined, target, rel, relPc)
	require.ErrorIs(t, err, ErrProofRejected)
}

func TestProveRejectsRaggedInputs(t *testing.T) {
	g := randomInputs(8)
	h := randomInputs(8)
	h[2] = h[2][:4]
	gPc, hPc := randomInputs(8), randomInputs(8)
	gamma := common.RandomFrArray(1)[0]

	var zero fr.Element
	_, _, _, _, err := Prove(newTestTranscript(),
		g, h, zero, prodRelation{},
		gPc, hPc, zero, maskedRelation{},
		gamma,
	)
	require.Error(t, err)
}
