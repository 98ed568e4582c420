package qr

import (
	"fmt"

	"github.com/yeqown/go-qrcode/v2"
)

// Encoder turns text into a module matrix at the given error-correction level.
type Encoder interface {
	Encode(text string, level Level) (*Matrix, error)
}

// EncoderFunc adapts a function to the Encoder interface.
type EncoderFunc func(text string, level Level) (*Matrix, error)

// Encode calls f(text, level).
func (f EncoderFunc) Encode(text string, level Level) (*Matrix, error) { return f(text, level) }

// YeqownEncoder encodes with github.com/yeqown/go-qrcode/v2.
type YeqownEncoder struct{}

// Encode builds the symbol and normalizes it into a Matrix.
func (YeqownEncoder) Encode(text string, level Level) (*Matrix, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrEncoding)
	}
	ecOpt, err := yeqownLevel(level)
	if err != nil {
		return nil, err
	}

	qrc, err := qrcode.NewWith(text, ecOpt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	w := &matrixWriter{}
	if err := qrc.Save(w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	if w.mat == nil {
		return nil, fmt.Errorf("%w: encoder produced no matrix", ErrEncoding)
	}
	return w.mat, nil
}

func yeqownLevel(level Level) (qrcode.EncodeOption, error) {
	switch level {
	case LevelL:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionLow), nil
	case LevelM:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium), nil
	case LevelQ:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart), nil
	case LevelH:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionHighest), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, level)
}

// matrixWriter implements qrcode.Writer and captures the symbol instead of
// drawing it.
type matrixWriter struct {
	mat *Matrix
}

func (w *matrixWriter) Write(mat qrcode.Matrix) error {
	width, height := mat.Width(), mat.Height()
	if width != height {
		return fmt.Errorf("non-square matrix %dx%d", width, height)
	}
	bits := make([]bool, width*height)
	mat.Iterate(qrcode.IterDirection_ROW, func(x, y int, v qrcode.QRValue) {
		bits[y*width+x] = v.IsSet()
	})
	m, err := NewMatrix(width, bits)
	if err != nil {
		return err
	}
	w.mat = m
	return nil
}

func (w *matrixWriter) Close() error { return nil }
