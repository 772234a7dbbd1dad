package batch

import (
	"fmt"
	"time"
)

// Mode selects what a batch run does to each asset
type Mode string

const (
	// ModeDecrypt XOR-decrypts headers with the project key
	ModeDecrypt Mode = "decrypt"
	// ModeRestore writes the known PNG header into images without a
	// key; other assets are decrypted only if a key is available
	ModeRestore Mode = "restore"
	// ModeEncrypt obfuscates plaintext png/ogg/m4a files
	ModeEncrypt Mode = "encrypt"
)

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeDecrypt, ModeRestore, ModeEncrypt:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Key sources, as reported in logs and metrics
const (
	KeySourceFlag   = "flag"
	KeySourceSystem = "system.json"
	KeySourcePNG    = "png"
)

var (
	ErrUnknownMode = fmt.Errorf("unknown mode")
	ErrKeyRequired = fmt.Errorf("key required")
	ErrNoAssets    = fmt.Errorf("no encrypted png to recover a key from")
)

// Per-asset outcomes
const (
	StatusDone    = "done"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Event reports progress after each asset
type Event struct {
	Rel    string
	Status string
	Err    error
	Done   int
	Total  int
}

// FileError ties an error to the asset that caused it
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Report summarises a batch run
type Report struct {
	RunID     string
	Mode      Mode
	Source    string
	Dest      string
	Total     int
	Processed int
	Skipped   int
	Failed    int
	Bytes     int64
	Errors    []FileError
	Duration  time.Duration
}

// Options are per-run settings
type Options struct {
	Mode Mode
	// Key is required for decrypt and encrypt; restore uses it for audio
	Key    []byte
	Flavor string
}
