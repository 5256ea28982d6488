// Package transcript implements the Fiat-Shamir transcript of the folding
// protocol on top of gnark-crypto's fiat-shamir package. A transcript is
// created with the full ordered list of challenges it will produce; absorbed
// values are bound to the next challenge to be squeezed, so the prover and
// the verifier must interleave absorptions and squeezes in the exact same
// order to agree on the challenges.
package transcript

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"
)

// ErrExhausted is returned when squeezing more challenges than declared
var ErrExhausted = errors.New("transcript: all declared challenges have been squeezed")

// final is a sentinel challenge appended to every transcript. It is never
// squeezed: it only gives trailing absorptions (values sent after the last
// challenge) something to bind to.
const final = "fin"

// Transcript produces a fixed sequence of challenges, each bound to all the
// values absorbed since transcript creation.
type Transcript struct {
	fs    *fiatshamir.Transcript
	names []string
	next  int
}

// New creates a transcript scoped to the given protocol label, producing the
// given challenges in order.
func New(label string, challenges ...string) *Transcript {
	names := make([]string, 0, len(challenges)+1)
	names = append(names, challenges...)
	names = append(names, final)

	t := &Transcript{
		fs:    fiatshamir.NewTranscript(sha256.New(), names...),
		names: names,
	}

	// the protocol label separates domains between protocols sharing the hash
	if err := t.fs.Bind(names[0], []byte(label)); err != nil {
		// only fails on an unknown challenge name, impossible here
		panic(err)
	}
	return t
}

// Absorb binds the given bytes to the next challenge
func (t *Transcript) Absorb(data []byte) error {
	if t.next >= len(t.names) {
		return ErrExhausted
	}
	return t.fs.Bind(t.names[t.next], data)
}

// AbsorbScalars binds field elements to the next challenge
func (t *Transcript) AbsorbScalars(es ...fr.Element) error {
	for i := range es {
		if err := t.Absorb(es[i].Marshal()); err != nil {
			return err
		}
	}
	return nil
}

// Squeeze derives the next challenge. The requested name must match the next
// declared challenge: a mismatch means the prover and verifier disagree on
// the protocol flow and is surfaced as an error rather than a wrong value.
func (t *Transcript) Squeeze(name string) (fr.Element, error) {
	var r fr.Element
	if t.next >= len(t.names)-1 {
		return r, ErrExhausted
	}
	if name != t.names[t.next] {
		return r, fmt.Errorf("transcript: squeezing %q but the next declared challenge is %q", name, t.names[t.next])
	}

	b, err := t.fs.ComputeChallenge(name)
	if err != nil {
		return r, err
	}
	r.SetBytes(b)
	t.next++
	return r, nil
}
