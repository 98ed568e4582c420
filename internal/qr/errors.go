package qr

import "errors"

var (
	// ErrEncoding is returned when a payload cannot be encoded or the encoder
	// produced a degenerate matrix.
	ErrEncoding = errors.New("qr: encoding failed")

	// ErrInvalidLevel is returned by ParseLevel for unknown error-correction levels.
	ErrInvalidLevel = errors.New("qr: invalid error correction level")
)
