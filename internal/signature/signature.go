// Package signature generates the public tokens that identify journal
// entries. A signature is 10 characters drawn from 1-9, A-Z and a-z. It is
// embedded in reminder reply addresses, so it must be hard to guess but it
// is not a secret.
package signature

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"regexp"
)

// Length is the number of characters in a signature.
const Length = 10

// Generator produces entry signatures.
type Generator interface {
	Generate() string
}

// charRange is an inclusive span of ASCII characters.
type charRange struct {
	lo, hi byte
}

var ranges = [...]charRange{
	{'1', '9'},
	{'A', 'Z'},
	{'a', 'z'},
}

// alphabet is every character a signature may contain, in range order.
var alphabet = func() []byte {
	var out []byte
	for _, r := range ranges {
		for c := r.lo; c <= r.hi; c++ {
			out = append(out, c)
		}
	}
	return out
}()

var pattern = regexp.MustCompile(`^[1-9A-Za-z]{10}$`)

// Valid reports whether s has the shape of a signature.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// Random picks a range with equal probability and then a character within
// that range, so digits come up more often than any single letter. It uses
// a non-cryptographic source.
type Random struct{}

// NewRandom returns the default generator.
func NewRandom() *Random {
	return &Random{}
}

// Generate implements Generator.
func (Random) Generate() string {
	buf := make([]byte, Length)
	for i := range buf {
		r := ranges[mrand.IntN(len(ranges))]
		buf[i] = r.lo + byte(mrand.IntN(int(r.hi-r.lo)+1))
	}
	return string(buf)
}

// Secure draws each character uniformly from the whole alphabet using
// crypto/rand.
type Secure struct{}

// NewSecure returns a generator backed by crypto/rand.
func NewSecure() *Secure {
	return &Secure{}
}

// Generate implements Generator. It panics if the system entropy source
// fails, which crypto/rand documents as unrecoverable.
func (Secure) Generate() string {
	size := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, Length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			panic("signature: crypto/rand failed: " + err.Error())
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf)
}

// New returns the generator registered under name, or the default Random
// generator for an unknown name.
func New(name string) Generator {
	if name == "secure" {
		return NewSecure()
	}
	return NewRandom()
}
