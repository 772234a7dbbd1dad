package obfuscation

import (
	"bytes"
	"fmt"
	"strings"
)

// Signature is the fake file signature (magic ++ version ++ reserved)
// that marks an obfuscated asset. It is never mutated after construction.
type Signature struct {
	ref []byte
	hex string
}

// NewSignature concatenates the three parts into a reference signature
func NewSignature(magic, version, reserved []byte) Signature {
	ref := make([]byte, 0, len(magic)+len(version)+len(reserved))
	ref = append(ref, magic...)
	ref = append(ref, version...)
	ref = append(ref, reserved...)
	return Signature{ref: ref, hex: EncodeHex(ref)}
}

// SignatureFromHex builds a signature from hex encoded parts
func SignatureFromHex(magic, version, reserved string) (Signature, error) {
	parts := make([][]byte, 3)
	for i, s := range []string{magic, version, reserved} {
		b, err := DecodeHex(s)
		if err != nil {
			return Signature{}, fmt.Errorf("signature part %d: %w", i, err)
		}
		parts[i] = b
	}
	return NewSignature(parts[0], parts[1], parts[2]), nil
}

// DefaultSignature is the RPG Maker MV/MZ signature
func DefaultSignature() Signature {
	sig, err := SignatureFromHex(DefaultSignatureHex, DefaultVersionHex, DefaultReservedHex)
	if err != nil {
		panic(err)
	}
	return sig
}

// Len returns the signature length in bytes
func (s Signature) Len() int { return len(s.ref) }

// Bytes returns a copy of the reference bytes
func (s Signature) Bytes() []byte {
	b := make([]byte, len(s.ref))
	copy(b, s.ref)
	return b
}

// Hex returns the lowercase hex text of the signature
func (s Signature) Hex() string { return s.hex }

// Matches compares candidate byte-for-byte against the reference
func (s Signature) Matches(candidate []byte) bool {
	return len(s.ref) > 0 && bytes.Equal(s.ref, candidate)
}

// MatchesHex compares hex text against the reference, ignoring case
func (s Signature) MatchesHex(candidate string) bool {
	return len(s.ref) > 0 && strings.EqualFold(s.hex, strings.TrimSpace(candidate))
}

func (s Signature) String() string { return s.hex }
