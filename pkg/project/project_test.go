package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func mkdirs(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := os.MkdirAll(p, 0755); err != nil {
			t.Fatalf("MkdirAll(%s) failed: %v", p, err)
		}
	}
}

func TestResolveRootImageDir(t *testing.T) {
	base := t.TempDir()
	candidate := filepath.Join(base, "game", "www")
	mkdirs(t, filepath.Join(candidate, "img"))

	got, err := ResolveRoot(candidate)
	if err != nil {
		t.Fatalf("ResolveRoot() failed: %v", err)
	}
	if got != base {
		t.Errorf("ResolveRoot() = %s, want %s", got, base)
	}
}

func TestResolveRootWebDir(t *testing.T) {
	base := t.TempDir()
	candidate := filepath.Join(base, "game")
	mkdirs(t, filepath.Join(candidate, "www"))

	got, err := ResolveRoot(candidate)
	if err != nil {
		t.Fatalf("ResolveRoot() failed: %v", err)
	}
	if got != base {
		t.Errorf("ResolveRoot() = %s, want %s", got, base)
	}
}

func TestResolveRootPrefersImageDir(t *testing.T) {
	base := t.TempDir()
	candidate := filepath.Join(base, "a", "b")
	mkdirs(t, filepath.Join(candidate, "img"), filepath.Join(candidate, "www"))

	got, err := ResolveRoot(candidate)
	if err != nil {
		t.Fatalf("ResolveRoot() failed: %v", err)
	}
	if got != base {
		t.Errorf("ResolveRoot() = %s, want %s", got, base)
	}
}

func TestResolveRootNotAProject(t *testing.T) {
	dir := t.TempDir()
	mkdirs(t, filepath.Join(dir, "audio"))

	// A plain file named like a marker does not count
	if err := os.WriteFile(filepath.Join(dir, "www"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ResolveRoot(dir)
	if !errors.Is(err, ErrNotAProject) {
		t.Errorf("ResolveRoot() error = %v, want %v", err, ErrNotAProject)
	}
}

func TestLoadSystemInfo(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "www", "data")
	mkdirs(t, dataDir)
	content := `{"gameTitle":"Test","hasEncryptedImages":true,"hasEncryptedAudio":false,"encryptionKey":"d41d8cd98f00b204e9800998ecf8427e"}`
	if err := os.WriteFile(filepath.Join(dataDir, "System.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	info, err := LoadSystemInfo(dir)
	if err != nil {
		t.Fatalf("LoadSystemInfo() failed: %v", err)
	}
	if !info.HasEncryptedImages || info.HasEncryptedAudio {
		t.Errorf("flags = %v/%v, want true/false", info.HasEncryptedImages, info.HasEncryptedAudio)
	}
	key, err := info.Key()
	if err != nil {
		t.Fatalf("Key() failed: %v", err)
	}
	if key != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("Key() = %s", key)
	}
}

func TestLoadSystemInfoMZLayout(t *testing.T) {
	dir := t.TempDir()
	mkdirs(t, filepath.Join(dir, "data"))
	if err := os.WriteFile(filepath.Join(dir, "data", "System.json"), []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}

	info, err := LoadSystemInfo(dir)
	if err != nil {
		t.Fatalf("LoadSystemInfo() failed: %v", err)
	}
	if _, err := info.Key(); !errors.Is(err, ErrNoKey) {
		t.Errorf("Key() error = %v, want %v", err, ErrNoKey)
	}
}

func TestLoadSystemInfoErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadSystemInfo(dir); !errors.Is(err, ErrNotAProject) {
		t.Errorf("LoadSystemInfo(empty) error = %v, want %v", err, ErrNotAProject)
	}

	mkdirs(t, filepath.Join(dir, "data"))
	if err := os.WriteFile(filepath.Join(dir, "data", "System.json"), []byte(`{not json`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSystemInfo(dir); err == nil {
		t.Error("LoadSystemInfo(bad json) should fail")
	}
}
