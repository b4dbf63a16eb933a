package core

import (
	"errors"
	"fmt"
)

// Source errors
var (
	ErrEmptySource = errors.New("source has no header row")
	ErrRaggedRow   = errors.New("row has more cells than the header")
	ErrUnsupported = errors.New("unsupported source format")
)

// NewRaggedRowError reports the 1-based line of a row wider than the header
func NewRaggedRowError(line, cells, headers int) error {
	return fmt.Errorf("%w: line %d has %d cells, header has %d", ErrRaggedRow, line, cells, headers)
}

