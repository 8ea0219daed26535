package record

import "errors"

var (
	ErrRecordNotFound    = errors.New("medical record not found")
	ErrInvalidRecordType = errors.New("invalid medical record type")
	ErrEmptyAddendum     = errors.New("addendum content is required")
)
