package asset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RealExtension maps a disguised extension to the real one. The match
// is exact: no case folding and no leading dot.
func RealExtension(fake string) (string, error) {
	ext, ok := realByFake[fake]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownExtension, fake)
	}
	return ext, nil
}

// FakeExtension maps a real extension to its disguised form for flavor
func FakeExtension(realExt string, flavor Flavor) (string, error) {
	table, ok := fakeByReal[flavor]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFlavor, flavor)
	}
	fake, ok := table[realExt]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownExtension, realExt)
	}
	return fake, nil
}

// IsEncrypted reports whether ext is a known disguised extension
func IsEncrypted(ext string) bool {
	_, ok := realByFake[ext]
	return ok
}

// IsPlain reports whether ext is a real extension that can be obfuscated
func IsPlain(ext string) bool {
	_, ok := fakeByReal[FlavorMV][ext]
	return ok
}

// KindOf returns the media kind for a real or disguised extension
func KindOf(ext string) Kind {
	if mapped, ok := realByFake[ext]; ok {
		ext = mapped
	}
	switch ext {
	case ExtPNG:
		return KindImage
	case ExtM4A, ExtOGG:
		return KindAudio
	default:
		return KindUnknown
	}
}

// ParseFlavor accepts "mv" or "mz" in any case
func ParseFlavor(s string) (Flavor, error) {
	f := Flavor(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := fakeByReal[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFlavor, s)
	}
	return f, nil
}

// Ext returns the extension of path without the leading dot
func Ext(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

// OutputName swaps the extension of a slash separated relative path
func OutputName(rel, ext string) string {
	base := strings.TrimSuffix(rel, filepath.Ext(rel))
	return base + "." + ext
}

// RealName returns the decrypted name for an asset
func (a Asset) RealName() (string, error) {
	ext, err := RealExtension(a.Extension)
	if err != nil {
		return "", err
	}
	return OutputName(a.Rel, ext), nil
}

// FakeName returns the obfuscated name for a plaintext asset
func (a Asset) FakeName(flavor Flavor) (string, error) {
	fake, err := FakeExtension(a.Extension, flavor)
	if err != nil {
		return "", err
	}
	return OutputName(a.Rel, fake), nil
}

// Kind returns the asset's media kind
func (a Asset) Kind() Kind {
	return KindOf(a.Extension)
}
