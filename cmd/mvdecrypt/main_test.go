package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dd0wney/mvdecrypt/pkg/batch"
	"github.com/dd0wney/mvdecrypt/pkg/obfuscation"
)

const testKeyHex = "d41d8cd98f00b204e9800998ecf8427e"

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// writeGame creates dir/www/img/system/Window.rpgmvp encrypted with testKeyHex
func writeGame(t *testing.T) (string, []byte) {
	t.Helper()
	key, err := obfuscation.ParseKey(testKeyHex)
	if err != nil {
		t.Fatal(err)
	}
	plain := append(obfuscation.PNGHeader(), []byte("window skin")...)
	enc, err := obfuscation.NewDefaultEngine().Encrypt(plain, key)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "www", "img", "system", "Window.rpgmvp")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, enc, 0644); err != nil {
		t.Fatal(err)
	}
	return dir, plain
}

func TestRunUsage(t *testing.T) {
	if code, _, stderr := runCLI(t); code != 2 || !strings.Contains(stderr, "Usage:") {
		t.Errorf("no args: code = %d, stderr = %q", code, stderr)
	}
	if code, stdout, _ := runCLI(t, "help"); code != 0 || !strings.Contains(stdout, "recover-key") {
		t.Errorf("help: code = %d", code)
	}
	if code, stdout, _ := runCLI(t, "version"); code != 0 || !strings.Contains(stdout, version) {
		t.Errorf("version: code = %d, stdout = %q", code, stdout)
	}
	if code, _, stderr := runCLI(t, "shred"); code != 2 || !strings.Contains(stderr, "Unknown command") {
		t.Errorf("unknown: code = %d, stderr = %q", code, stderr)
	}
}

func TestRunExt(t *testing.T) {
	code, stdout, _ := runCLI(t, "ext", "rpgmvo")
	if code != 0 || strings.TrimSpace(stdout) != "ogg" {
		t.Errorf("ext rpgmvo: code = %d, stdout = %q", code, stdout)
	}

	code, _, stderr := runCLI(t, "ext", "txt")
	if code != 1 || !strings.Contains(stderr, "unknown extension") {
		t.Errorf("ext txt: code = %d, stderr = %q", code, stderr)
	}
}

func TestRunRoot(t *testing.T) {
	dir, _ := writeGame(t)

	code, stdout, stderr := runCLI(t, "root", dir)
	if code != 0 {
		t.Fatalf("root: code = %d, stderr = %q", code, stderr)
	}
	if strings.TrimSpace(stdout) != filepath.Dir(dir) {
		t.Errorf("root = %q, want %q", strings.TrimSpace(stdout), filepath.Dir(dir))
	}

	if code, _, _ := runCLI(t, "root", t.TempDir()); code != 1 {
		t.Errorf("root of empty dir: code = %d, want 1", code)
	}
}

func TestRunRecoverKey(t *testing.T) {
	dir, _ := writeGame(t)
	path := filepath.Join(dir, "www", "img", "system", "Window.rpgmvp")

	code, stdout, stderr := runCLI(t, "recover-key", path)
	if code != 0 {
		t.Fatalf("recover-key: code = %d, stderr = %q", code, stderr)
	}
	if strings.TrimSpace(stdout) != testKeyHex {
		t.Errorf("recovered key = %q, want %q", stdout, testKeyHex)
	}

	if code, _, _ := runCLI(t, "recover-key", filepath.Join(dir, "bgm.rpgmvo")); code != 1 {
		t.Errorf("recover-key on audio: code = %d, want 1", code)
	}
	if code, _, _ := runCLI(t, "recover-key"); code != 2 {
		t.Errorf("recover-key without file: code = %d, want 2", code)
	}
}

func TestRunDecrypt(t *testing.T) {
	dir, plain := writeGame(t)
	out := t.TempDir()
	metricsFile := filepath.Join(t.TempDir(), "mvdecrypt.prom")

	code, stdout, stderr := runCLI(t, "decrypt",
		"--key", testKeyHex,
		"--out", out,
		"--workers", "2",
		"--metrics-file", metricsFile,
		dir,
	)
	if code != 0 {
		t.Fatalf("decrypt: code = %d, stderr = %q", code, stderr)
	}
	if !strings.Contains(stdout, "1/1") {
		t.Errorf("summary = %q", stdout)
	}

	got, err := os.ReadFile(filepath.Join(out, "www", "img", "system", "Window.png"))
	if err != nil {
		t.Fatalf("decrypted file missing: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("decrypted = %x, want %x", got, plain)
	}

	prom, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatalf("metrics file missing: %v", err)
	}
	if !strings.Contains(string(prom), `mvdecrypt_key_recoveries_total{source="flag"} 1`) {
		t.Errorf("metrics = %s", prom)
	}
}

func TestRunDecryptRecoversKey(t *testing.T) {
	dir, plain := writeGame(t)
	out := t.TempDir()

	code, _, stderr := runCLI(t, "decrypt", "--out", out, dir)
	if code != 0 {
		t.Fatalf("decrypt: code = %d, stderr = %q", code, stderr)
	}
	if !strings.Contains(stderr, `"key_source":"png"`) {
		t.Errorf("expected key recovery log, got %q", stderr)
	}

	got, err := os.ReadFile(filepath.Join(out, "www", "img", "system", "Window.png"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plain) {
		t.Error("decrypt with recovered key produced wrong bytes")
	}
}

func TestRunRestoreAndEncrypt(t *testing.T) {
	dir, plain := writeGame(t)
	restored := t.TempDir()

	if code, _, stderr := runCLI(t, "restore", "--out", restored, dir); code != 0 {
		t.Fatalf("restore: code = %d, stderr = %q", code, stderr)
	}
	got, err := os.ReadFile(filepath.Join(restored, "www", "img", "system", "Window.png"))
	if err != nil || !bytes.Equal(got, plain) {
		t.Fatalf("restore output = %x, %v", got, err)
	}

	encrypted := t.TempDir()
	if code, _, stderr := runCLI(t, "encrypt", "--key", testKeyHex, "--flavor", "mz", "--out", encrypted, restored); code != 0 {
		t.Fatalf("encrypt: code = %d, stderr = %q", code, stderr)
	}
	original, err := os.ReadFile(filepath.Join(dir, "www", "img", "system", "Window.rpgmvp"))
	if err != nil {
		t.Fatal(err)
	}
	reencrypted, err := os.ReadFile(filepath.Join(encrypted, "www", "img", "system", "Window.png_"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(original, reencrypted) {
		t.Error("re-encrypting the restored image should reproduce the original file")
	}
}

func TestRunEncryptNeedsKey(t *testing.T) {
	code, _, stderr := runCLI(t, "encrypt", "--out", t.TempDir(), t.TempDir())
	if code != 1 || !strings.Contains(stderr, "key required") {
		t.Errorf("encrypt without key: code = %d, stderr = %q", code, stderr)
	}
}

func TestParseBatchFlags(t *testing.T) {
	var stderr bytes.Buffer

	f, err := parseBatchFlags("decrypt", []string{"--raw-key", "abc", "--no-verify", "game"}, &stderr)
	if err != nil {
		t.Fatalf("parseBatchFlags() failed: %v", err)
	}
	if f.dir != "game" || !f.set["no-verify"] || f.set["out"] {
		t.Errorf("flags = %+v", f)
	}
	key, err := f.explicitKey()
	if err != nil || string(key) != "abc" {
		t.Errorf("explicitKey() = %q, %v", key, err)
	}

	if _, err := parseBatchFlags("decrypt", []string{"--key", "00", "--raw-key", "x", "game"}, &stderr); err == nil {
		t.Error("--key with --raw-key should fail")
	}
	if _, err := parseBatchFlags("decrypt", nil, &stderr); err == nil {
		t.Error("missing directory should fail")
	}
}

func TestRenderSummary(t *testing.T) {
	r := &batch.Report{
		RunID:     "run-1",
		Mode:      batch.ModeDecrypt,
		Source:    "game",
		Dest:      "out",
		Total:     3,
		Processed: 1,
		Skipped:   1,
		Failed:    1,
		Errors:    []batch.FileError{{Path: "img/a.rpgmvp", Err: obfuscation.ErrSignatureMismatch}},
		Duration:  1500 * time.Millisecond,
	}

	out := renderSummary(r)
	for _, want := range []string{"run-1", "1/3", "img/a.rpgmvp: signature mismatch", "1.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestProgressModel(t *testing.T) {
	cancelled := false
	m := newProgressModel("test", func() { cancelled = true })

	next, _ := m.Update(eventMsg(batch.Event{Rel: "a.rpgmvp", Status: batch.StatusFailed, Done: 1, Total: 2}))
	pm := next.(progressModel)
	if pm.done != 1 || pm.total != 2 || pm.failed != 1 {
		t.Errorf("model = %+v", pm)
	}
	if !strings.Contains(pm.View(), "1/2") {
		t.Errorf("View() = %q", pm.View())
	}

	_, cmd := pm.Update(doneMsg{})
	if cmd == nil {
		t.Error("doneMsg should quit")
	}
	if cancelled {
		t.Error("doneMsg must not cancel the run")
	}
}
