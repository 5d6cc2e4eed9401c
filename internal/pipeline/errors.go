package pipeline

import (
	"errors"
	"fmt"
)

// ErrFatal marks failures that must abort the whole batch, such as a lost
// database connection. Everything else only fails the current ticker.
var ErrFatal = errors.New("fatal")

func fatal(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrFatal, err)
}
