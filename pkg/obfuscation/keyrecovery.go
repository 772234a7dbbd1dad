package obfuscation

import "fmt"

// RecoverKey derives the project key from one encrypted header and the
// known plaintext header of the same asset type. Since
// encrypted = plain ^ key, key = encrypted ^ plain.
func RecoverKey(encryptedHeader, referenceHeader []byte, headerLength int) ([]byte, error) {
	if headerLength <= 0 {
		return nil, fmt.Errorf("%w: header length must be positive, got %d", ErrInvalidArgument, headerLength)
	}
	if len(encryptedHeader) != headerLength {
		return nil, fmt.Errorf("%w: encrypted header is %d bytes, want %d", ErrLengthMismatch, len(encryptedHeader), headerLength)
	}
	if len(referenceHeader) != headerLength {
		return nil, fmt.Errorf("%w: reference header is %d bytes, want %d", ErrLengthMismatch, len(referenceHeader), headerLength)
	}

	key := make([]byte, headerLength)
	xorKeystream(key, encryptedHeader, referenceHeader)
	return key, nil
}
