package sim

import (
	"math/rand"
	"strings"
	"testing"
)

func TestRandomNameShape(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		name := randomName(rng)
		if len(name) < 3 || len(name) > 5 {
			t.Fatalf("name %q has length %d, want 3-5", name, len(name))
		}
		if name != strings.ToUpper(name) {
			t.Fatalf("name %q is not uppercase", name)
		}
		for j := 0; j < len(name); j++ {
			letter := strings.ToLower(string(name[j]))
			if j%2 == 0 {
				if !strings.Contains(nameConsonants, letter) {
					t.Fatalf("name %q: position %d should be a consonant", name, j)
				}
			} else {
				if !strings.Contains(nameVowels, letter) {
					t.Fatalf("name %q: position %d should be a vowel", name, j)
				}
			}
		}
	}
}
