package obfuscation

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// EncodeHex returns the lowercase hexadecimal text of b
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// DecodeHex parses hexadecimal text in either case. Surrounding
// whitespace is ignored.
func DecodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return b, nil
}

// ParseKey decodes a hexadecimal key. An empty key is rejected.
func ParseKey(s string) ([]byte, error) {
	key, err := DecodeHex(s)
	if err != nil {
		return nil, fmt.Errorf("parse key: %w", err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("parse key: %w: empty key", ErrInvalidArgument)
	}
	return key, nil
}

// RawKey uses the bytes of s verbatim as a key
func RawKey(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("raw key: %w: empty key", ErrInvalidArgument)
	}
	return []byte(s), nil
}
