package sim

import (
	"math/rand"
	"strings"
)

const (
	nameVowels     = "aeiou"
	nameConsonants = "bdfgklmnprstvz"
)

// randomName generates a pronounceable creature name: 3-5 letters
// alternating consonants and vowels, uppercased. BOK, DARU, ZOMAV.
func randomName(rng *rand.Rand) string {
	n := 3 + rng.Intn(3)
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			b.WriteByte(nameConsonants[rng.Intn(len(nameConsonants))])
		} else {
			b.WriteByte(nameVowels[rng.Intn(len(nameVowels))])
		}
	}
	return strings.ToUpper(b.String())
}
