package common

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// FrSliceToString pretty prints a slice of fr.Element to ease debugging
func FrSliceToString(slice []fr.Element) string {
	res := "["
	for _, x := range slice {
		res += fmt.Sprintf("%v, ", x.String())
	}
	res += "]"
	return res
}

// RandomFrArray returns an array of random field elements, for tests only
func RandomFrArray(size int) []fr.Element {
	res := make([]fr.Element, size)
	for i := range res {
		if _, err := res[i].SetRandom(); err != nil {
			panic(err)
		}
	}
	return res
}
