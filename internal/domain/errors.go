package domain

import "errors"

var (
	ErrNetwork    = errors.New("network error")
	ErrDecode     = errors.New("decode error")
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
)

type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindNetwork    ErrorKind = "NetworkError"
	KindDecode     ErrorKind = "DecodeError"
	KindNotFound   ErrorKind = "NotFoundError"
	KindValidation ErrorKind = "ValidationError"
)

// Kind maps err onto the error taxonomy. Unclassified errors count as network errors.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrDecode):
		return KindDecode
	default:
		return KindNetwork
	}
}
