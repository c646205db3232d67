package processor

import (
	"errors"
	"fmt"

	"jobai-go/internal/parser"
)

// Sentinel errors. Callers match them with errors.Is.
var (
	// ErrInputTooShort means the text has fewer than MinResumeChars non-whitespace characters.
	ErrInputTooShort = errors.New("resume text too short")
	// ErrEmptyDocument means the PDF produced no extractable text.
	ErrEmptyDocument = parser.ErrEmptyDocument

	ErrUnsupportedFileType = errors.New("only PDF files are supported")
	ErrFileTooLarge        = errors.New("file exceeds upload limit")
	ErrEmptyUpload         = errors.New("uploaded file is empty")

	ErrParseTextFailed      = errors.New("failed to extract text from PDF")
	ErrDownloadFailed       = errors.New("failed to download resume")
	ErrStoreFailed          = errors.New("failed to store extraction result")
	ErrPublishMessageFailed = errors.New("failed to publish extraction event")
)

// ExtractionError carries the submission and stage of a failure.
type ExtractionError struct {
	SubmissionUUID string
	Op             string
	BaseErr        error
	Detail         string
}

func (e *ExtractionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (op:%s, uuid:%s): %s", e.BaseErr, e.Op, e.SubmissionUUID, e.Detail)
	}
	return fmt.Sprintf("%s (op:%s, uuid:%s)", e.BaseErr, e.Op, e.SubmissionUUID)
}

func (e *ExtractionError) Unwrap() error {
	return e.BaseErr
}

// Is supports errors.Is against the sentinel.
func (e *ExtractionError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// NewValidationError wraps one of the upload or input sentinels.
func NewValidationError(uuid string, base error, detail string) error {
	return &ExtractionError{
		SubmissionUUID: uuid,
		Op:             "validate",
		BaseErr:        base,
		Detail:         detail,
	}
}

// NewParseError wraps a PDF text failure. An empty document keeps its own sentinel.
func NewParseError(uuid string, cause error) error {
	base := ErrParseTextFailed
	if errors.Is(cause, ErrEmptyDocument) {
		base = ErrEmptyDocument
	}
	return &ExtractionError{
		SubmissionUUID: uuid,
		Op:             "parse",
		BaseErr:        base,
		Detail:         cause.Error(),
	}
}

func NewDownloadError(uuid, detail string) error {
	return &ExtractionError{
		SubmissionUUID: uuid,
		Op:             "download",
		BaseErr:        ErrDownloadFailed,
		Detail:         detail,
	}
}

func NewStoreError(uuid, detail string) error {
	return &ExtractionError{
		SubmissionUUID: uuid,
		Op:             "store",
		BaseErr:        ErrStoreFailed,
		Detail:         detail,
	}
}

func NewPublishError(uuid, detail string) error {
	return &ExtractionError{
		SubmissionUUID: uuid,
		Op:             "publish",
		BaseErr:        ErrPublishMessageFailed,
		Detail:         detail,
	}
}

// IsClientError reports whether err was caused by the input rather than the service.
// Retrying such a request cannot succeed.
func IsClientError(err error) bool {
	for _, target := range []error{
		ErrInputTooShort, ErrEmptyDocument, ErrUnsupportedFileType, ErrFileTooLarge, ErrEmptyUpload,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
