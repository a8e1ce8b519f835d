package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrBatchTooLarge       = errors.New("batch exceeds maximum invoice count")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrRunNotCompleted     = errors.New("run has not completed")
)
