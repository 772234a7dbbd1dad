package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/mvdecrypt/pkg/obfuscation"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mvdecrypt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	scheme, err := cfg.BuildScheme()
	require.NoError(t, err)
	assert.Equal(t, obfuscation.DefaultHeaderLength, scheme.HeaderLength())
	assert.True(t, scheme.VerifySignature())
	assert.Equal(t, obfuscation.DefaultSignature().Bytes(), scheme.Signature().Bytes())
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
scheme:
  version: "000302"
  verify_signature: false
run:
  workers: 3
  flavor: mz
output:
  dir: out
log:
  level: debug
  format: text
metrics_file: metrics.prom
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, obfuscation.DefaultSignatureHex, cfg.Scheme.Signature, "unset keys keep defaults")
	assert.Equal(t, "000302", cfg.Scheme.Version)
	assert.False(t, cfg.Scheme.VerifySignature)
	assert.Equal(t, 3, cfg.Run.Workers)
	assert.Equal(t, "mz", cfg.Run.Flavor)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "metrics.prom", cfg.MetricsFile)
	assert.Equal(t, "text", cfg.Log.Format)

	scheme, err := cfg.BuildScheme()
	require.NoError(t, err)
	assert.False(t, scheme.Signature().Matches(obfuscation.DefaultSignature().Bytes()))
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default().Scheme, cfg.Scheme)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "scheme:\n  magic: 00\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		substr string
	}{
		{"bad hex", func(c *Config) { c.Scheme.Signature = "xyz" }, "Scheme.Signature"},
		{"missing signature", func(c *Config) { c.Scheme.Signature = "" }, "Scheme.Signature: is required"},
		{"zero workers", func(c *Config) { c.Run.Workers = 0 }, "Run.Workers: must be at least 1"},
		{"bad flavor", func(c *Config) { c.Run.Flavor = "vx" }, "Run.Flavor"},
		{"bucket without region", func(c *Config) { c.Output.S3.Bucket = "assets" }, "Output.S3.Region"},
		{"half credentials", func(c *Config) { c.Output.S3.AccessKeyID = "AKIA" }, "Output.S3.SecretAccessKey"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "Log.Level"},
		{"length mismatch", func(c *Config) { c.Scheme.HeaderLength = 8 }, "length mismatch"},
		{"no output", func(c *Config) { c.Output.Dir = "" }, "Output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"MVDECRYPT_WORKERS":          "7",
		"MVDECRYPT_VERIFY_SIGNATURE": "false",
		"MVDECRYPT_S3_BUCKET":        "game-assets",
		"MVDECRYPT_S3_REGION":        "eu-west-1",
		"MVDECRYPT_OUTPUT_DIR":       "",
	}))
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Run.Workers)
	assert.False(t, cfg.Scheme.VerifySignature)
	assert.Equal(t, "decrypted", cfg.Output.Dir, "empty values are ignored")
	assert.True(t, cfg.UseS3())
	require.NoError(t, cfg.Validate())

	assert.Error(t, Default().ApplyEnv(envMap(map[string]string{"MVDECRYPT_WORKERS": "many"})))
	assert.Error(t, Default().ApplyEnv(envMap(map[string]string{"MVDECRYPT_VERIFY_SIGNATURE": "maybe"})))
	assert.NoError(t, Default().ApplyEnv(noEnv))
}
