package obfuscation

import "fmt"

const (
	// DefaultHeaderLength is the size of both the fake signature and the
	// obfuscated header region
	DefaultHeaderLength = 16

	// Default signature parts, hex encoded
	DefaultSignatureHex = "5250474d56000000" // "RPGMV" padded with zeros
	DefaultVersionHex   = "000301"
	DefaultReservedHex  = "0000000000"
)

var (
	ErrInvalidArgument   = fmt.Errorf("invalid argument")
	ErrTooShort          = fmt.Errorf("input too short")
	ErrSignatureMismatch = fmt.Errorf("signature mismatch")
	ErrLengthMismatch    = fmt.Errorf("length mismatch")
)

// pngHeader is the first 16 bytes of every PNG file: the 8-byte magic
// followed by the IHDR chunk length and type.
var pngHeader = [DefaultHeaderLength]byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
}

// PNGHeader returns a fresh copy of the canonical PNG reference header
func PNGHeader() []byte {
	h := make([]byte, len(pngHeader))
	copy(h, pngHeader[:])
	return h
}

// Scheme is the immutable description of one obfuscation variant.
// Build it with NewScheme; the zero value is not usable.
type Scheme struct {
	signature       Signature
	headerLength    int
	verifySignature bool
}

// NewScheme creates a scheme. The signature length must equal headerLength.
func NewScheme(sig Signature, headerLength int, verifySignature bool) (Scheme, error) {
	if headerLength <= 0 {
		return Scheme{}, fmt.Errorf("%w: header length must be positive, got %d", ErrInvalidArgument, headerLength)
	}
	if sig.Len() != headerLength {
		return Scheme{}, fmt.Errorf("%w: signature is %d bytes, header length is %d", ErrLengthMismatch, sig.Len(), headerLength)
	}
	return Scheme{
		signature:       sig,
		headerLength:    headerLength,
		verifySignature: verifySignature,
	}, nil
}

// DefaultScheme returns the RPG Maker MV/MZ scheme with signature checking on
func DefaultScheme() Scheme {
	return Scheme{
		signature:       DefaultSignature(),
		headerLength:    DefaultHeaderLength,
		verifySignature: true,
	}
}

// Signature returns the reference signature
func (s Scheme) Signature() Signature { return s.signature }

// HeaderLength returns the length of the obfuscated header region
func (s Scheme) HeaderLength() int { return s.headerLength }

// VerifySignature reports whether the fake signature is checked
func (s Scheme) VerifySignature() bool { return s.verifySignature }

// MinFileLength is the smallest encrypted file the scheme accepts
func (s Scheme) MinFileLength() int { return 2 * s.headerLength }
