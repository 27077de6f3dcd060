package domain

import "github.com/cockroachdb/errors"

var (
	ErrMalformedInput    = errors.New("malformed input")
	ErrBatchFailure      = errors.New("batch failure")
	ErrMissingFile       = errors.New("file field is required")
	ErrFileTooLarge      = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrUnknownFieldSet   = errors.New("unknown field set")
	ErrMissingAPIKey     = errors.New("vision api key is required")
	ErrUnknownProvider   = errors.New("unknown vision provider")
)
