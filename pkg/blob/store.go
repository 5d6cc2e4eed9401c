package blob

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("blob not found")

// Store keeps text bodies addressed by filename. Uploading an existing name
// replaces its content.
type Store interface {
	Upload(ctx context.Context, name, content string) error
	Download(ctx context.Context, name string) (string, error)
	Name() string
}
