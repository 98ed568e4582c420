package render

import "errors"

var (
	// ErrLayout is returned when the requested width cannot fit the matrix.
	ErrLayout = errors.New("render: layout does not fit")

	// ErrInvalidStyle is returned for style values outside their domain.
	ErrInvalidStyle = errors.New("render: invalid style")
)
