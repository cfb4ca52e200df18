package types

import (
	"encoding/hex"
	"fmt"
	"math/bits"
	"strings"
)

// Fingerprint is a fixed-width perceptual hash. Bits are stored in 64-bit
// words, most significant word first, so the first raster bit is the top bit
// of words[0].
type Fingerprint struct {
	words []uint64
	bits  int
}

// NewFingerprint copies the given words into a fingerprint of the given bit
// width. A width of zero means len(words)*64.
func NewFingerprint(words []uint64, width int) Fingerprint {
	if width <= 0 {
		width = len(words) * 64
	}
	cp := make([]uint64, len(words))
	copy(cp, words)
	return Fingerprint{words: cp, bits: width}
}

// ParseFingerprint decodes the hex form produced by String
func ParseFingerprint(s string) (Fingerprint, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s)%16 != 0 {
		return Fingerprint{}, fmt.Errorf("fingerprint %q: length must be a positive multiple of 16", s)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("fingerprint %q: %w", s, err)
	}
	words := make([]uint64, len(raw)/8)
	for i := range words {
		var w uint64
		for _, b := range raw[i*8 : i*8+8] {
			w = w<<8 | uint64(b)
		}
		words[i] = w
	}
	return Fingerprint{words: words, bits: len(words) * 64}, nil
}

// Bits returns the fingerprint width in bits
func (f Fingerprint) Bits() int {
	return f.bits
}

// Words returns a copy of the underlying words
func (f Fingerprint) Words() []uint64 {
	cp := make([]uint64, len(f.words))
	copy(cp, f.words)
	return cp
}

// Distance returns the Hamming distance between two fingerprints. Missing
// words on the shorter side count as zero bits, which keeps the distance a
// metric across mixed widths.
func (f Fingerprint) Distance(other Fingerprint) int {
	a, b := f.words, other.words
	if len(a) < len(b) {
		a, b = b, a
	}
	distance := 0
	for i := range a {
		var w uint64
		if i < len(b) {
			w = b[i]
		}
		distance += bits.OnesCount64(a[i] ^ w)
	}
	return distance
}

// Equal reports whether both fingerprints have the same width and bits
func (f Fingerprint) Equal(other Fingerprint) bool {
	if f.bits != other.bits || len(f.words) != len(other.words) {
		return false
	}
	for i := range f.words {
		if f.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

// Mod returns the fingerprint, read as one unsigned integer, modulo m.
// It panics when m is zero.
func (f Fingerprint) Mod(m uint64) uint64 {
	var rem uint64
	for _, w := range f.words {
		rem = bits.Rem64(rem, w, m)
	}
	return rem
}

// Key returns a comparable value identifying the exact fingerprint
func (f Fingerprint) Key() string {
	return f.String()
}

// String returns the fingerprint as zero-padded hex, 16 digits per word
func (f Fingerprint) String() string {
	var sb strings.Builder
	sb.Grow(len(f.words) * 16)
	for _, w := range f.words {
		fmt.Fprintf(&sb, "%016x", w)
	}
	return sb.String()
}

// MarshalText implements encoding.TextMarshaler
func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (f *Fingerprint) UnmarshalText(text []byte) error {
	parsed, err := ParseFingerprint(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
