package storage

import (
	"context"
	"io"
)

type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}

type Remover interface {
	Remove(ctx context.Context, objectName string) error
}

// Store is what the resume service needs: durable writes plus cleanup when a
// resume is deleted.
type Store interface {
	Uploader
	Remover
}
