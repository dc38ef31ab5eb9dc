package services

import (
	"errors"
)

var (
	ErrTemplateInUse       = errors.New("template has associated projects")
	ErrSingleFileItem      = errors.New("item does not allow multiple files")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrMissingSourceFile   = errors.New("source file is missing")
	ErrMissingManifest     = errors.New("manifest.json missing from archive")
	ErrUnsupportedVersion  = errors.New("unsupported manifest version")
	ErrInvalidStatus       = errors.New("invalid status value")
	ErrPDFNotConfigured    = errors.New("pdf rendering is not configured")
	ErrNothingToPrint      = errors.New("project has no attachments to print")
)
