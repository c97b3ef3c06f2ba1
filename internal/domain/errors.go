package domain

import "errors"

var (
	ErrInvalidPath        = errors.New("invalid path")
	ErrInvalidName        = errors.New("invalid file or folder name")
	ErrNameTooLong        = errors.New("file or folder name too long")
	ErrNotFound           = errors.New("file or folder not found")
	ErrForbidden          = errors.New("protected path cannot be modified")
	ErrAlreadyExists      = errors.New("file or folder already exists")
	ErrTrashUnavailable   = errors.New("trash directory is unavailable")
	ErrOperationFailed    = errors.New("filesystem operation failed")
	ErrPreviewUnsupported = errors.New("preview is not supported for this file type")
)
