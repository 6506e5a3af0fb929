package form

import "errors"

var (
	ErrBusy         = errors.New("a write is already in flight")
	ErrUnknownField = errors.New("unknown form field")
	ErrNoTarget     = errors.New("player has no id")
)
