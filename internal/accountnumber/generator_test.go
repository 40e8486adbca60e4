package accountnumber

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoundTrip(t *testing.T) {
	g := NewGenerator(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		n := g.Generate()
		require.Len(t, n, Length)
		assert.NotEqual(t, byte('0'), n[0], "seed must not start with zero: %s", n)
		assert.True(t, IsValid(n), "generated number %s failed validation", n)
	}
}

func TestPackageGenerate(t *testing.T) {
	assert.True(t, IsValid(Generate()))
}

func TestCheckDigitKnownValues(t *testing.T) {
	// 7992739871 is the textbook Luhn payload with check digit 3.
	assert.Equal(t, 3, CheckDigit("7992739871"))
	assert.Equal(t, 0, CheckDigit("000000000000"))
	// 100000000000: the leading 1 sits at position 11 (odd), so sum = 1.
	assert.Equal(t, 9, CheckDigit("100000000000"))
	assert.True(t, IsValid("1000000000009"))
}

func TestSingleDigitMutationDetected(t *testing.T) {
	g := NewGenerator(rand.NewPCG(42, 7))
	for i := 0; i < 200; i++ {
		n := g.Generate()
		for pos := 0; pos < Length; pos++ {
			for d := byte('0'); d <= '9'; d++ {
				if n[pos] == d {
					continue
				}
				mutated := n[:pos] + string(d) + n[pos+1:]
				assert.False(t, IsValid(mutated), "mutation %s of %s passed", mutated, n)
			}
		}
	}
}

func TestIsValidRejectsMalformedInput(t *testing.T) {
	cases := []string{
		"",
		"123",
		"100000000000",
		"10000000000099",
		"10000000000a9",
		"1000000000 09",
		"-100000000009",
		strings.Repeat("٣", 13),
	}
	for _, c := range cases {
		assert.False(t, IsValid(c), "input %q", c)
	}
}

func TestGeneratorDeterministicWithSource(t *testing.T) {
	a := NewGenerator(rand.NewPCG(9, 9))
	b := NewGenerator(rand.NewPCG(9, 9))
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Generate(), b.Generate())
	}
}
