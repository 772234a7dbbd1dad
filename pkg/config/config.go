package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/mvdecrypt/pkg/obfuscation"
)

// Config is the complete tool configuration. Every field has a usable
// default; a YAML file and MVDECRYPT_* environment variables override it.
type Config struct {
	Scheme      SchemeConfig `yaml:"scheme"`
	Run         RunConfig    `yaml:"run"`
	Output      OutputConfig `yaml:"output"`
	Log         LogConfig    `yaml:"log"`
	MetricsFile string       `yaml:"metrics_file"`
}

// SchemeConfig describes the obfuscation variant. The three signature
// parts are concatenated and must add up to HeaderLength bytes.
type SchemeConfig struct {
	Signature       string `yaml:"signature" validate:"required,hexbytes"`
	Version         string `yaml:"version" validate:"omitempty,hexbytes"`
	Reserved        string `yaml:"reserved" validate:"omitempty,hexbytes"`
	HeaderLength    int    `yaml:"header_length" validate:"min=1,max=4096"`
	VerifySignature bool   `yaml:"verify_signature"`
}

// RunConfig controls batch processing
type RunConfig struct {
	Workers   int    `yaml:"workers" validate:"min=1,max=256"`
	Flavor    string `yaml:"flavor" validate:"oneof=mv mz"`
	Overwrite bool   `yaml:"overwrite"`
}

// OutputConfig selects where processed assets go. S3 wins over Dir
// when a bucket is set.
type OutputConfig struct {
	Dir string   `yaml:"dir"`
	S3  S3Config `yaml:"s3"`
}

// S3Config configures the S3 output sink. Empty credentials fall back
// to the AWS default credential chain.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region" validate:"required_with=Bucket"`
	Endpoint        string `yaml:"endpoint" validate:"omitempty,url"`
	AccessKeyID     string `yaml:"access_key_id" validate:"required_with=SecretAccessKey"`
	SecretAccessKey string `yaml:"secret_access_key" validate:"required_with=AccessKeyID"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// LogConfig configures the default logger
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
}

// Default returns the RPG Maker MV/MZ configuration
func Default() *Config {
	workers := runtime.NumCPU()
	if workers > 16 {
		workers = 16
	}
	return &Config{
		Scheme: SchemeConfig{
			Signature:       obfuscation.DefaultSignatureHex,
			Version:         obfuscation.DefaultVersionHex,
			Reserved:        obfuscation.DefaultReservedHex,
			HeaderLength:    obfuscation.DefaultHeaderLength,
			VerifySignature: true,
		},
		Run: RunConfig{
			Workers: workers,
			Flavor:  "mv",
		},
		Output: OutputConfig{
			Dir: "decrypted",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds a config from defaults, the optional YAML file at path and
// the process environment, then validates it
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays YAML onto cfg, rejecting unknown keys
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from environment variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("MVDECRYPT_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MVDECRYPT_WORKERS: %w", err)
		}
		c.Run.Workers = n
	}
	if v, ok := lookup("MVDECRYPT_VERIFY_SIGNATURE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MVDECRYPT_VERIFY_SIGNATURE: %w", err)
		}
		c.Scheme.VerifySignature = b
	}
	str("MVDECRYPT_FLAVOR", &c.Run.Flavor)
	str("MVDECRYPT_OUTPUT_DIR", &c.Output.Dir)
	str("MVDECRYPT_S3_BUCKET", &c.Output.S3.Bucket)
	str("MVDECRYPT_S3_PREFIX", &c.Output.S3.Prefix)
	str("MVDECRYPT_S3_REGION", &c.Output.S3.Region)
	str("MVDECRYPT_S3_ENDPOINT", &c.Output.S3.Endpoint)
	str("MVDECRYPT_METRICS_FILE", &c.MetricsFile)
	str("MVDECRYPT_LOG_LEVEL", &c.Log.Level)
	str("MVDECRYPT_LOG_FORMAT", &c.Log.Format)
	return nil
}

// BuildScheme turns the scheme section into an immutable obfuscation.Scheme
func (c *Config) BuildScheme() (obfuscation.Scheme, error) {
	sig, err := obfuscation.SignatureFromHex(c.Scheme.Signature, c.Scheme.Version, c.Scheme.Reserved)
	if err != nil {
		return obfuscation.Scheme{}, err
	}
	return obfuscation.NewScheme(sig, c.Scheme.HeaderLength, c.Scheme.VerifySignature)
}

// UseS3 reports whether output goes to S3
func (c *Config) UseS3() bool {
	return c.Output.S3.Bucket != ""
}
