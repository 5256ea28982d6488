// Package pedersen implements the blinded vector commitment used by the
// folding scheme: Commit(v, r) = Σ v_i·G_i + r·H over bn254. Commitments are
// additively homomorphic, which is the only structural property the folding
// orchestrator relies on.
package pedersen

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrVectorTooLarge is returned when committing to a vector longer than the key
var ErrVectorTooLarge = errors.New("pedersen: vector is larger than the commitment key")

const dst = "zerofold/pedersen/v1"

// Key holds the commitment bases. G are the vector bases, H the blinding base.
type Key struct {
	G []bn254.G1Affine
	H bn254.G1Affine
}

// Commitment to a vector of scalars
type Commitment struct {
	P bn254.G1Affine
}

// NewKey derives a key of capacity n from nothing-up-my-sleeve hash-to-curve points
func NewKey(n int) (*Key, error) {
	k := &Key{G: make([]bn254.G1Affine, n)}

	var buf [8]byte
	for i := 0; i < n; i++ {
		binary.BigEndian.PutUint64(buf[:], uint64(i))
		p, err := bn254.HashToG1(buf[:], []byte(dst))
		if err != nil {
			return nil, err
		}
		k.G[i] = p
	}

	h, err := bn254.HashToG1([]byte("blinding"), []byte(dst))
	if err != nil {
		return nil, err
	}
	k.H = h
	return k, nil
}

// Commit returns Σ v_i·G_i + blinding·H
func (k *Key) Commit(v []fr.Element, blinding fr.Element) (Commitment, error) {
	if len(v) > len(k.G) {
		return Commitment{}, ErrVectorTooLarge
	}

	var acc bn254.G1Jac
	if _, err := acc.MultiExp(k.G[:len(v)], v, ecc.MultiExpConfig{}); err != nil {
		return Commitment{}, err
	}

	var blind bn254.G1Affine
	blind.ScalarMultiplication(&k.H, blinding.BigInt(new(big.Int)))
	acc.AddMixed(&blind)

	var res Commitment
	res.P.FromJacobian(&acc)
	return res, nil
}

// Mix returns a + r(b - a), the commitment to the entry-wise mix of the
// committed vectors under the mix of their blindings.
func Mix(a, b Commitment, r fr.Element) Commitment {
	var aj, d bn254.G1Jac
	aj.FromAffine(&a.P)
	d.FromAffine(&b.P)
	d.SubAssign(&aj)
	d.ScalarMultiplication(&d, r.BigInt(new(big.Int)))
	d.AddAssign(&aj)

	var res Commitment
	res.P.FromJacobian(&d)
	return res
}

// Equal compares two commitments
func (c Commitment) Equal(o Commitment) bool {
	return c.P.Equal(&o.P)
}

// Marshal returns the canonical encoding absorbed by the transcript
func (c Commitment) Marshal() []byte {
	return c.P.Marshal()
}
