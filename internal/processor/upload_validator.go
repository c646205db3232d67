package processor

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultMaxUploadBytes applies when no limit is configured.
const DefaultMaxUploadBytes int64 = 20 * 1024 * 1024

// ValidateUpload checks the file name and size of an uploaded resume.
func ValidateUpload(filename string, size, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return NewValidationError("", ErrUnsupportedFileType, fmt.Sprintf("file %q", filename))
	}
	if size <= 0 {
		return NewValidationError("", ErrEmptyUpload, "")
	}
	if size > maxBytes {
		return NewValidationError("", ErrFileTooLarge, fmt.Sprintf("%d bytes, limit %d", size, maxBytes))
	}
	return nil
}
