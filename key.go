// Package prob provides the shared contract layer for composable
// probability distributions and invertible transforms over
// gorgonia.org/tensor dense arrays: canonical random seeds, sample
// shape normalization, broadcasting, and the elementwise math used by
// the bijector and distribution packages.
//
// Everything in this package is a pure function of its inputs. There
// is no hidden random state anywhere: randomness enters only through
// an explicit Key, so every computation is reproducible and safe to
// invoke concurrently.
package prob

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// A Key is the canonical seed token: an opaque, immutable
// pseudorandom-generator state held as two 32-bit words. Keys are
// value types; copying one never aliases mutable state.
type Key struct {
	hi, lo uint32
}

// NewKey derives the canonical Key for an integer seed. The derivation
// is fixed: the high word is the top 32 bits of the seed and the low
// word is the bottom 32 bits, so the same integer always yields the
// same Key.
func NewKey(seed uint64) Key {
	return Key{hi: uint32(seed >> 32), lo: uint32(seed)}
}

// ConvertSeed normalizes a seed value into a Key. Accepted kinds are
// Go integers of any fixed width (negative values sign-extend into 64
// bits) and Keys themselves, which pass through unchanged. Any other
// kind fails with ErrInvalidSeedKind.
func ConvertSeed(seed interface{}) (Key, error) {
	switch s := seed.(type) {
	case Key:
		return s, nil
	case int:
		return NewKey(uint64(int64(s))), nil
	case int8:
		return NewKey(uint64(int64(s))), nil
	case int16:
		return NewKey(uint64(int64(s))), nil
	case int32:
		return NewKey(uint64(int64(s))), nil
	case int64:
		return NewKey(uint64(s)), nil
	case uint:
		return NewKey(uint64(s)), nil
	case uint8:
		return NewKey(uint64(s)), nil
	case uint16:
		return NewKey(uint64(s)), nil
	case uint32:
		return NewKey(uint64(s)), nil
	case uint64:
		return NewKey(s), nil
	default:
		return Key{}, fmt.Errorf("%w: %T", ErrInvalidSeedKind, seed)
	}
}

// splitmix64 is the finalizer of the SplitMix64 generator. It is the
// fixed mixing function behind Seed, Fold and Split, so derived
// streams are decorrelated even for adjacent raw seeds.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// Seed returns the mixed 64-bit value of the Key, for generators that
// are constructed from a single integer seed.
func (k Key) Seed() uint64 {
	return splitmix64(uint64(k.hi)<<32 | uint64(k.lo))
}

// Source returns a new x/exp/rand source positioned at the start of
// the Key's stream. The source is the only bridge between a Key and
// drawable random numbers; callers own the returned source and may
// advance it freely without affecting the Key.
func (k Key) Source() rand.Source {
	return rand.NewSource(k.Seed())
}

// Fold derives a new Key from the receiver and an integer, such that
// distinct integers yield decorrelated Keys. The receiver is not
// modified.
func (k Key) Fold(n uint64) Key {
	return NewKey(splitmix64(k.Seed() ^ splitmix64(n)))
}

// Split derives n decorrelated Keys from the receiver.
func (k Key) Split(n int) []Key {
	keys := make([]Key, n)
	for i := range keys {
		keys[i] = k.Fold(uint64(i))
	}

	return keys
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return fmt.Sprintf("Key(0x%08x, 0x%08x)", k.hi, k.lo)
}
