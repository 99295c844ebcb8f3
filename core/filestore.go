package core

import (
	"context"
	"io"
)

// FileStore persists uploaded files and returns a publicly reachable URL.
type FileStore interface {
	Store(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error)
}
