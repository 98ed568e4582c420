package qr

import "fmt"

// Matrix is an immutable square grid of QR modules. It is the only matrix
// representation used past the encoder boundary and is safe to share
// between goroutines.
type Matrix struct {
	size int
	bits []bool
}

// NewMatrix copies bits (row-major, size*size entries) into a new Matrix.
func NewMatrix(size int, bits []bool) (*Matrix, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: matrix side must be positive, got %d", ErrEncoding, size)
	}
	if len(bits) != size*size {
		return nil, fmt.Errorf("%w: %d modules do not form a %dx%d grid", ErrEncoding, len(bits), size, size)
	}
	cp := make([]bool, len(bits))
	copy(cp, bits)
	return &Matrix{size: size, bits: cp}, nil
}

// Size returns the side length in modules.
func (m *Matrix) Size() int { return m.size }

// Dark reports whether the module at (row, col) is ink. Out-of-range
// coordinates are light.
func (m *Matrix) Dark(row, col int) bool {
	if row < 0 || col < 0 || row >= m.size || col >= m.size {
		return false
	}
	return m.bits[row*m.size+col]
}

// Equal reports whether two matrices have the same side and modules.
func (m *Matrix) Equal(o *Matrix) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.size != o.size {
		return false
	}
	for i := range m.bits {
		if m.bits[i] != o.bits[i] {
			return false
		}
	}
	return true
}
