package sink

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/dd0wney/mvdecrypt/pkg/asset"
)

var (
	ErrExists      = fmt.Errorf("output already exists")
	ErrInvalidPath = fmt.Errorf("invalid output path")
)

// Sink stores processed assets under a slash separated relative path
type Sink interface {
	Write(ctx context.Context, rel string, data []byte) error
	// Describe returns a human readable destination, e.g. s3://bucket/prefix
	Describe() string
}

// cleanRel rejects absolute paths and paths that climb out of the root
func cleanRel(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	rel = strings.ReplaceAll(rel, "\\", "/")
	if strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("%w: %s is absolute", ErrInvalidPath, rel)
	}
	clean := path.Clean(rel)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %s escapes the output root", ErrInvalidPath, rel)
	}
	return clean, nil
}

// ContentType guesses the MIME type from the asset extension
func ContentType(rel string) string {
	switch asset.Ext(rel) {
	case asset.ExtPNG:
		return "image/png"
	case asset.ExtOGG:
		return "audio/ogg"
	case asset.ExtM4A:
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}
