package util

import "errors"

var (
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrSheetKindMismatch = errors.New("sheet kind does not match the requested analysis")
	ErrInvalidSheet      = errors.New("invalid sheet")
	ErrFileTooLarge      = errors.New("file too large")
	ErrUnknownExportKind = errors.New("unknown export kind")
)
