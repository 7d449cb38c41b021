package property

import "errors"

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrInvalidStatus    = errors.New("invalid property status")
	ErrInvalidSource    = errors.New("unknown listing source")
)
