package batch

import (
	"errors"
	"fmt"

	"github.com/dd0wney/mvdecrypt/pkg/asset"
	"github.com/dd0wney/mvdecrypt/pkg/obfuscation"
	"github.com/dd0wney/mvdecrypt/pkg/project"
)

// ResolveKey finds the project key for dir. An explicit key wins, then
// the encryptionKey in System.json, then known-plaintext recovery from
// the first encrypted PNG found under dir.
func ResolveKey(dir string, explicit []byte, engine *obfuscation.Engine) ([]byte, string, error) {
	if len(explicit) > 0 {
		return explicit, KeySourceFlag, nil
	}

	info, err := project.LoadSystemInfo(dir)
	switch {
	case err == nil:
		if hexKey, kerr := info.Key(); kerr == nil {
			key, perr := obfuscation.ParseKey(hexKey)
			if perr != nil {
				return nil, "", fmt.Errorf("System.json: %w", perr)
			}
			return key, KeySourceSystem, nil
		}
	case !errors.Is(err, project.ErrNotAProject):
		return nil, "", err
	}

	key, err := RecoverKeyFromTree(dir, engine)
	if err != nil {
		return nil, "", err
	}
	return key, KeySourcePNG, nil
}

// RecoverKeyFromTree recovers the key from the first encrypted PNG under
// dir that carries a valid signature
func RecoverKeyFromTree(dir string, engine *obfuscation.Engine) ([]byte, error) {
	images, err := asset.Scan(dir, func(ext string) bool {
		return asset.IsEncrypted(ext) && asset.KindOf(ext) == asset.KindImage
	})
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, img := range images {
		key, err := RecoverKeyFromFile(img.Path, engine)
		if err == nil {
			return key, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoAssets, lastErr)
	}
	return nil, ErrNoAssets
}

// RecoverKeyFromFile reads only the signature and header of an encrypted
// PNG and derives the key from them
func RecoverKeyFromFile(path string, engine *obfuscation.Engine) ([]byte, error) {
	prefix, err := asset.ReadPrefix(path, engine.Scheme().MinFileLength())
	if err != nil {
		return nil, err
	}
	key, err := engine.RecoverKey(prefix, obfuscation.PNGHeader())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return key, nil
}
