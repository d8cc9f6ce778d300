package creation

import "errors"

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptyFile           = errors.New("file is empty")
	ErrAttributeIndex      = errors.New("attribute index out of range")
	ErrInvalidField        = errors.New("invalid field value")
	ErrStepIncomplete      = errors.New("step is incomplete")
	ErrUnknownStep         = errors.New("unknown step")
	ErrNotReady            = errors.New("form is not ready to submit")
	ErrSubmissionInFlight  = errors.New("a submission is already in progress")
	ErrCollectionNotNew    = errors.New("collection images require a new collection")
	ErrSessionClosed       = errors.New("session is closed")
)
