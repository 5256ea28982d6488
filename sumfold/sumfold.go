// Package sumfold implements the batching engine of the folding scheme: a
// one-round sum-check over the instance-selector variable b that reduces two
// hypercube-sum claims per relation (one for the running accumulator at
// b = 0, one for the fresh step at b = 1) to a single evaluation at a random
// point r_b, batching the two relations with a random coefficient γ.
//
// The round polynomial is R(b) = eq(ρ, b)·(Q(b) + γ·Q_pc(b)) where
// Q(b) = Σ_x F(g(x) + b·(h(x) − g(x))) and ρ is a transcript challenge.
package sumfold

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/consensys/zerofold/common"
	"github.com/consensys/zerofold/poly"
	"github.com/consensys/zerofold/transcript"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrProofRejected is returned when the round polynomial does not carry the
// claimed sums
var ErrProofRejected = errors.New("sumfold: proof rejected")

// Challenge labels, in squeeze order
const (
	ChallengeRho = "rho"
	ChallengeRb  = "r_b"
)

// Relation is the integrand of a batched sum claim: a stateless pure
// function of the input tables' entries at one hypercube point, of bounded
// total degree. Implementations must not retain the input pointers.
type Relation interface {
	Eval(res *fr.Element, in ...*fr.Element)
	Degree() int
}

// Inputs bundles the five tables a relation is evaluated over. All tables
// have the hypercube size.
type Inputs [5]poly.MultiLin

// Proof carries the coefficients of the round polynomial, lowest degree first
type Proof struct {
	Coeffs []fr.Element
}

// Size returns the common table length, or an error on a ragged bundle
func (in *Inputs) Size() (int, error) {
	n := len(in[0])
	for k := range in {
		if len(in[k]) != n {
			return 0, fmt.Errorf("sumfold: input table %v has size %v, want %v", k, len(in[k]), n)
		}
	}
	return n, nil
}

// Prove batches the two relations and produces the round polynomial along
// with the folding point r_b and the two per-relation evaluations at r_b.
// claimLeft and claimLeftPc are the running accumulator's claimed sums; the
// fresh side's sums are zero by construction of the zero-check reduction.
func Prove(
	t *transcript.Transcript,
	g, h Inputs, claimLeft fr.Element, rel Relation,
	gPc, hPc Inputs, claimLeftPc fr.Element, relPc Relation,
	gamma fr.Element,
) (proof Proof, rb, T, TPc fr.Element, err error) {

	n, err := g.Size()
	if err != nil {
		return proof, rb, T, TPc, err
	}
	for _, in := range []*Inputs{&h, &gPc, &hPc} {
		if m, err := in.Size(); err != nil || m != n {
			return proof, rb, T, TPc, fmt.Errorf("sumfold: mismatched table sizes %v != %v", m, n)
		}
	}

	// bind the combined claim, then derive ρ
	var combined, tmp fr.Element
	combined.Mul(&gamma, &claimLeftPc)
	combined.Add(&combined, &claimLeft)
	if err = t.AbsorbScalars(combined); err != nil {
		return proof, rb, T, TPc, err
	}
	rho, err := t.Squeeze(ChallengeRho)
	if err != nil {
		return proof, rb, T, TPc, err
	}

	// evaluate the two relation sums on the interpolation domain
	nEvals := common.Max(rel.Degree(), relPc.Degree()) + 2 // +1 for eq(ρ, b)
	evals, evalsPc := partialSums(&g, &h, rel, &gPc, &hPc, relPc, n, nEvals)

	// R(t) = eq(ρ, t)·(Q(t) + γ·Q_pc(t)) on the domain, then interpolate
	rEvals := make([]fr.Element, nEvals)
	var at fr.Element
	for k := 0; k < nEvals; k++ {
		at.SetUint64(uint64(k))
		rEvals[k].Mul(&gamma, &evalsPc[k])
		rEvals[k].Add(&rEvals[k], &evals[k])
		tmp = poly.EvalEq([]fr.Element{rho}, []fr.Element{at})
		rEvals[k].Mul(&rEvals[k], &tmp)
	}
	proof.Coeffs = poly.InterpolateOnRange(rEvals)

	// bind the round polynomial, then derive the folding point
	if err = t.AbsorbScalars(proof.Coeffs...); err != nil {
		return proof, rb, T, TPc, err
	}
	rb, err = t.Squeeze(ChallengeRb)
	if err != nil {
		return proof, rb, T, TPc, err
	}

	// final per-relation evaluations, pinned at r_b
	T = sumMixed(&g, &h, rel, rb, n)
	TPc = sumMixed(&gPc, &hPc, relPc, rb, n)

	return proof, rb, T, TPc, nil
}

// Verify checks the round polynomial against the combined initial claim and
// the expected fresh-side target, and returns the claimed final combined
// value c = R(r_b), the batching challenge ρ and the folding point r_b.
// The relations bound the admissible degree of the round polynomial; a proof
// outside that bound is rejected before any coefficient is touched, since
// the proof is adversarial input.
func (p *Proof) Verify(t *transcript.Transcript, combinedClaim, finalTarget fr.Element, rel, relPc Relation) (c, rho, rb fr.Element, err error) {

	nEvals := common.Max(rel.Degree(), relPc.Degree()) + 2
	if len(p.Coeffs) == 0 || len(p.Coeffs) > nEvals {
		return c, rho, rb, fmt.Errorf("%w: round polynomial has %v coefficients, want at most %v", ErrProofRejected, len(p.Coeffs), nEvals)
	}

	if err = t.AbsorbScalars(combinedClaim); err != nil {
		return c, rho, rb, err
	}
	rho, err = t.Squeeze(ChallengeRho)
	if err != nil {
		return c, rho, rb, err
	}

	if err = t.AbsorbScalars(p.Coeffs...); err != nil {
		return c, rho, rb, err
	}

	// R(0) + R(1) must equal (1-ρ)·claim + ρ·target
	var zero, one, expected, actual, tmp fr.Element
	one.SetOne()
	tmp.Sub(&one, &rho)
	expected.Mul(&tmp, &combinedClaim)
	tmp.Mul(&rho, &finalTarget)
	expected.Add(&expected, &tmp)

	actual = poly.EvalUnivariate(p.Coeffs, zero)
	tmp = poly.EvalUnivariate(p.Coeffs, one)
	actual.Add(&actual, &tmp)

	if !actual.Equal(&expected) {
		return c, rho, rb, fmt.Errorf("%w: round polynomial sums to %v, want %v", ErrProofRejected, actual.String(), expected.String())
	}

	rb, err = t.Squeeze(ChallengeRb)
	if err != nil {
		return c, rho, rb, err
	}
	c = poly.EvalUnivariate(p.Coeffs, rb)

	return c, rho, rb, nil
}

// partialSums evaluates Q(t) and Q_pc(t) for t in [0, nEvals), sharing one
// pass over the hypercube. Per point, the mixed inputs at consecutive t
// differ by the constant delta h[x] - g[x], so each next evaluation is one
// addition per table.
func partialSums(
	g, h *Inputs, rel Relation,
	gPc, hPc *Inputs, relPc Relation,
	n, nEvals int,
) ([]fr.Element, []fr.Element) {

	type pair struct {
		evals, evalsPc []fr.Element
	}
	evalChan := make(chan pair, runtime.NumCPU())

	nJobs := common.ParallelizeNonBlocking(n, func(start, stop int) {
		res := pair{
			evals:   make([]fr.Element, nEvals),
			evalsPc: make([]fr.Element, nEvals),
		}

		var v fr.Element
		var in, delta, inPc, deltaPc [5]fr.Element
		args := make([]*fr.Element, 5)
		argsPc := make([]*fr.Element, 5)
		for k := 0; k < 5; k++ {
			args[k] = &in[k]
			argsPc[k] = &inPc[k]
		}

		for x := start; x < stop; x++ {
			for k := 0; k < 5; k++ {
				in[k] = g[k][x]
				delta[k].Sub(&h[k][x], &g[k][x])
				inPc[k] = gPc[k][x]
				deltaPc[k].Sub(&hPc[k][x], &gPc[k][x])
			}

			for k := 0; k < nEvals; k++ {
				if k > 0 {
					for j := 0; j < 5; j++ {
						in[j].Add(&in[j], &delta[j])
						inPc[j].Add(&inPc[j], &deltaPc[j])
					}
				}
				rel.Eval(&v, args...)
				res.evals[k].Add(&res.evals[k], &v)
				relPc.Eval(&v, argsPc...)
				res.evalsPc[k].Add(&res.evalsPc[k], &v)
			}
		}

		evalChan <- res
	})

	evals := make([]fr.Element, nEvals)
	evalsPc := make([]fr.Element, nEvals)
	for j := 0; j < nJobs; j++ {
		other := <-evalChan
		for k := 0; k < nEvals; k++ {
			evals[k].Add(&evals[k], &other.evals[k])
			evalsPc[k].Add(&evalsPc[k], &other.evalsPc[k])
		}
	}

	return evals, evalsPc
}

// sumMixed computes Σ_x F(g(x) + r(h(x) - g(x)))
func sumMixed(g, h *Inputs, rel Relation, r fr.Element, n int) fr.Element {
	resChan := make(chan fr.Element, runtime.NumCPU())

	nJobs := common.ParallelizeNonBlocking(n, func(start, stop int) {
		var acc, v fr.Element
		var in [5]fr.Element
		args := make([]*fr.Element, 5)
		for k := 0; k < 5; k++ {
			args[k] = &in[k]
		}

		for x := start; x < stop; x++ {
			for k := 0; k < 5; k++ {
				in[k].Sub(&h[k][x], &g[k][x])
				in[k].Mul(&in[k], &r)
				in[k].Add(&in[k], &g[k][x])
			}
			rel.Eval(&v, args...)
			acc.Add(&acc, &v)
		}

		resChan <- acc
	})

	var res fr.Element
	for j := 0; j < nJobs; j++ {
		other := <-resChan
		res.Add(&res, &other)
	}
	return res
}
