package obfuscation

// Decrypter turns an obfuscated asset back into its original bytes
type Decrypter interface {
	Decrypt(file, key []byte) ([]byte, error)
}

// Encrypter obfuscates a plaintext asset
type Encrypter interface {
	Encrypt(plain, key []byte) ([]byte, error)
}

// HeaderRestorer replaces the obfuscated header with a known plaintext
// header, without a key
type HeaderRestorer interface {
	RestoreKnownHeader(file, reference []byte) ([]byte, error)
}

// KeyRecoverer derives a key from an obfuscated asset of known type
type KeyRecoverer interface {
	RecoverKey(file, reference []byte) ([]byte, error)
}

// Codec combines every whole-file operation
type Codec interface {
	Decrypter
	Encrypter
	HeaderRestorer
	KeyRecoverer
}

// Verify that Engine implements the interfaces
var _ Codec = (*Engine)(nil)
