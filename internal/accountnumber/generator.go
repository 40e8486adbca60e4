// Package accountnumber produces and checks 13-digit account numbers: twelve
// random digits followed by a Luhn-style check digit.
package accountnumber

import (
	"math/rand/v2"
	"strconv"
	"sync"
)

const (
	// Length is the number of digits in an account number.
	Length = 13

	seedMin = 100000000000
	seedMax = 999999999999
)

// Generator draws candidate account numbers. It knows nothing about persisted
// accounts; callers enforce uniqueness.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a generator backed by src. A nil src uses a randomly
// seeded PCG source.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Generator{rng: rand.New(src)}
}

// Generate returns a new candidate account number.
func (g *Generator) Generate() string {
	g.mu.Lock()
	seed := seedMin + g.rng.Int64N(seedMax-seedMin+1)
	g.mu.Unlock()

	digits := strconv.FormatInt(seed, 10)
	return digits + strconv.Itoa(CheckDigit(digits))
}

var defaultGenerator = NewGenerator(nil)

// Generate returns a candidate account number from the process-wide generator.
func Generate() string {
	return defaultGenerator.Generate()
}

// CheckDigit computes the check digit over a string of ASCII digits. Digits at
// even positions counted from the right (starting at zero) are doubled.
func CheckDigit(digits string) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		d := int(digits[len(digits)-1-i] - '0')
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return (10 - sum%10) % 10
}

// IsValid reports whether number is exactly 13 ASCII digits whose last digit
// matches the check digit of the first twelve.
func IsValid(number string) bool {
	if len(number) != Length {
		return false
	}
	for i := 0; i < len(number); i++ {
		if number[i] < '0' || number[i] > '9' {
			return false
		}
	}
	return CheckDigit(number[:Length-1]) == int(number[Length-1]-'0')
}
