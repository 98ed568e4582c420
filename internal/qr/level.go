package qr

import (
	"fmt"
	"strings"
)

// Level is a QR error-correction level.
type Level byte

const (
	LevelL Level = 'L' // ~7% recovery
	LevelM Level = 'M' // ~15% recovery
	LevelQ Level = 'Q' // ~25% recovery
	LevelH Level = 'H' // ~30% recovery
)

// ParseLevel parses a single-letter level, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return LevelL, nil
	case "M":
		return LevelM, nil
	case "Q":
		return LevelQ, nil
	case "H":
		return LevelH, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// Valid reports whether l is one of the four defined levels.
func (l Level) Valid() bool {
	switch l {
	case LevelL, LevelM, LevelQ, LevelH:
		return true
	}
	return false
}

func (l Level) String() string {
	if !l.Valid() {
		return "?"
	}
	return string(rune(l))
}
