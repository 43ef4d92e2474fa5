package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnresolvedParent   = errors.New("unresolved parent entity")
	ErrMalformedReference = errors.New("malformed entity reference")
)
