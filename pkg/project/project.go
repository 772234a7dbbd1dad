package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	ErrNotAProject = fmt.Errorf("not an RPG Maker project")
	ErrNoKey       = fmt.Errorf("project has no encryption key")
)

// Marker directories of the RPG Maker asset layout
const (
	ImageDir = "img"
	WebDir   = "www"
)

// ResolveRoot maps a candidate path to the project root by looking for
// marker directories directly below it: an "img" directory means the
// root is two levels up, a "www" directory means one level up.
func ResolveRoot(candidate string) (string, error) {
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", candidate, err)
	}

	switch {
	case isDir(filepath.Join(abs, ImageDir)):
		return filepath.Dir(filepath.Dir(abs)), nil
	case isDir(filepath.Join(abs, WebDir)):
		return filepath.Dir(abs), nil
	default:
		return "", fmt.Errorf("%w: %s has neither %q nor %q", ErrNotAProject, abs, ImageDir, WebDir)
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// SystemInfo is the subset of data/System.json that describes asset
// encryption
type SystemInfo struct {
	EncryptionKey      string `json:"encryptionKey"`
	HasEncryptedImages bool   `json:"hasEncryptedImages"`
	HasEncryptedAudio  bool   `json:"hasEncryptedAudio"`
}

// systemPaths lists where System.json lives for MV (www/) and MZ layouts
var systemPaths = []string{
	filepath.Join(WebDir, "data", "System.json"),
	filepath.Join("data", "System.json"),
}

// LoadSystemInfo reads System.json from a game directory
func LoadSystemInfo(dir string) (*SystemInfo, error) {
	for _, rel := range systemPaths {
		data, err := os.ReadFile(filepath.Join(dir, rel))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}

		var info SystemInfo
		if err := json.Unmarshal(data, &info); err != nil {
			return nil, fmt.Errorf("parse %s: %w", rel, err)
		}
		return &info, nil
	}
	return nil, fmt.Errorf("%w: no System.json under %s", ErrNotAProject, dir)
}

// Key returns the hex encoded project key
func (s *SystemInfo) Key() (string, error) {
	if s.EncryptionKey == "" {
		return "", ErrNoKey
	}
	return s.EncryptionKey, nil
}
