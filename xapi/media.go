package xapi

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const MaxMediaSize = 5 * 1024 * 1024

var mediaContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// LoadMediaAsset validates a local image and loads it for upload. Checks
// run in order: file exists, size within limit, extension allowed. Invalid
// files are rejected here so they never consume API quota.
func LoadMediaAsset(path string) (*MediaAsset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("file not found: %s", path)}
	}
	if info.IsDir() {
		return nil, &ValidationError{Reason: fmt.Sprintf("path is a directory, not a file: %s", path)}
	}
	if info.Size() > MaxMediaSize {
		return nil, &ValidationError{Reason: fmt.Sprintf("file too large: %d bytes (max %dMB)", info.Size(), MaxMediaSize/(1024*1024))}
	}

	ext := strings.ToLower(filepath.Ext(path))
	contentType, ok := mediaContentTypes[ext]
	if !ok {
		return nil, &ValidationError{Reason: fmt.Sprintf("unsupported image format %q, allowed: jpeg, png, gif, webp", ext)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("cannot read file %s: %v", path, err)}
	}

	return &MediaAsset{
		Bytes:       data,
		ContentType: contentType,
		FileName:    filepath.Base(path),
	}, nil
}
