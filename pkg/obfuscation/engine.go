package obfuscation

import "fmt"

// Engine applies a Scheme to whole asset buffers. It holds no mutable
// state and is safe for concurrent use as long as callers do not share
// buffers between goroutines.
type Engine struct {
	scheme Scheme
}

// NewEngine creates an engine for the given scheme
func NewEngine(scheme Scheme) (*Engine, error) {
	if scheme.headerLength <= 0 || scheme.signature.Len() != scheme.headerLength {
		return nil, fmt.Errorf("%w: scheme not initialized", ErrInvalidArgument)
	}
	return &Engine{scheme: scheme}, nil
}

// NewDefaultEngine creates an engine for the RPG Maker MV/MZ scheme
func NewDefaultEngine() *Engine {
	return &Engine{scheme: DefaultScheme()}
}

// Scheme returns the engine's scheme
func (e *Engine) Scheme() Scheme {
	return e.scheme
}

// check validates length and signature without touching file
func (e *Engine) check(file []byte) error {
	n := e.scheme.headerLength
	if len(file) < e.scheme.MinFileLength() {
		return fmt.Errorf("%w: got %d bytes, need at least %d", ErrTooShort, len(file), e.scheme.MinFileLength())
	}
	if e.scheme.verifySignature && !e.scheme.signature.Matches(file[:n]) {
		return fmt.Errorf("%w: got %s, want %s", ErrSignatureMismatch, EncodeHex(file[:n]), e.scheme.signature.Hex())
	}
	return nil
}

// ValidateAndStrip checks the fake signature and returns a copy of the
// obfuscated header that follows it
func (e *Engine) ValidateAndStrip(file []byte) ([]byte, error) {
	if err := e.check(file); err != nil {
		return nil, err
	}
	n := e.scheme.headerLength
	header := make([]byte, n)
	copy(header, file[n:2*n])
	return header, nil
}

// DecryptHeader XORs an obfuscated header with key. Splicing the result
// back into the file is the caller's job.
func (e *Engine) DecryptHeader(header, key []byte) ([]byte, error) {
	if len(header) != e.scheme.headerLength {
		return nil, fmt.Errorf("%w: header is %d bytes, want %d", ErrLengthMismatch, len(header), e.scheme.headerLength)
	}
	return Transform(header, key)
}

// Decrypt returns a new buffer holding the original asset: the fake
// signature is dropped, the header is decrypted and everything after
// it is copied unchanged
func (e *Engine) Decrypt(file, key []byte) ([]byte, error) {
	header, err := e.ValidateAndStrip(file)
	if err != nil {
		return nil, err
	}
	plain, err := e.DecryptHeader(header, key)
	if err != nil {
		return nil, err
	}
	return e.splice(plain, file), nil
}

// DecryptInPlace decrypts the header inside file and returns the slice of
// file that holds the original asset. Nothing is written if validation fails.
func (e *Engine) DecryptInPlace(file, key []byte) ([]byte, error) {
	if err := e.check(file); err != nil {
		return nil, err
	}
	n := e.scheme.headerLength
	if err := TransformInPlace(file[n:2*n], key); err != nil {
		return nil, err
	}
	return file[n:], nil
}

// RestoreKnownHeader returns a new buffer where the header is replaced by
// reference instead of being decrypted. This needs no key and only works
// for asset types whose plaintext header is constant, such as PNG.
func (e *Engine) RestoreKnownHeader(file, reference []byte) ([]byte, error) {
	if err := e.checkReference(reference); err != nil {
		return nil, err
	}
	if err := e.check(file); err != nil {
		return nil, err
	}
	return e.splice(reference, file), nil
}

// RestoreKnownHeaderInPlace is RestoreKnownHeader overwriting file
func (e *Engine) RestoreKnownHeaderInPlace(file, reference []byte) ([]byte, error) {
	if err := e.checkReference(reference); err != nil {
		return nil, err
	}
	if err := e.check(file); err != nil {
		return nil, err
	}
	n := e.scheme.headerLength
	copy(file[n:2*n], reference)
	return file[n:], nil
}

// Encrypt obfuscates a plaintext asset: signature ++ encrypted header ++ rest
func (e *Engine) Encrypt(plain, key []byte) ([]byte, error) {
	n := e.scheme.headerLength
	if len(plain) < n {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrTooShort, len(plain), n)
	}
	header, err := Transform(plain[:n], key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, n+len(plain))
	copy(out[:n], e.scheme.signature.ref)
	copy(out[n:2*n], header)
	copy(out[2*n:], plain[n:])
	return out, nil
}

// RecoverKey derives the project key from an encrypted file whose
// plaintext header is reference
func (e *Engine) RecoverKey(file, reference []byte) ([]byte, error) {
	header, err := e.ValidateAndStrip(file)
	if err != nil {
		return nil, err
	}
	return RecoverKey(header, reference, e.scheme.headerLength)
}

func (e *Engine) checkReference(reference []byte) error {
	if len(reference) != e.scheme.headerLength {
		return fmt.Errorf("%w: reference header is %d bytes, want %d", ErrLengthMismatch, len(reference), e.scheme.headerLength)
	}
	return nil
}

// splice builds header ++ file[2n:]
func (e *Engine) splice(header, file []byte) []byte {
	n := e.scheme.headerLength
	out := make([]byte, len(file)-n)
	copy(out[:n], header)
	copy(out[n:], file[2*n:])
	return out
}
