package obfuscation

import "fmt"

// Transform XORs data against a repeating key: out[i] = data[i] ^ key[i%len(key)].
// The result has the same length as data and neither input is modified.
// Applying Transform twice with the same key returns the original bytes.
func Transform(data, key []byte) ([]byte, error) {
	if err := checkTransformArgs(data, key); err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	xorKeystream(out, data, key)
	return out, nil
}

// TransformInPlace is Transform writing the result back into buf
func TransformInPlace(buf, key []byte) error {
	if err := checkTransformArgs(buf, key); err != nil {
		return err
	}
	xorKeystream(buf, buf, key)
	return nil
}

func checkTransformArgs(data, key []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty data", ErrInvalidArgument)
	}
	if len(key) == 0 {
		return fmt.Errorf("%w: empty key", ErrInvalidArgument)
	}
	return nil
}

// dst and src may alias exactly
func xorKeystream(dst, src, key []byte) {
	k := len(key)
	for i := range src {
		dst[i] = src[i] ^ key[i%k]
	}
}
