package repositories

import (
	"context"
	"io"
)

// StoredObject describes bytes written to a DocumentStore.
type StoredObject struct {
	Reference   string
	ContentType string
	SizeBytes   int64
}

// DocumentStore persists uploaded file bytes under generated names.
type DocumentStore interface {
	// Save streams r to a new object. The original name only contributes its extension.
	// Implementations stop reading after maxBytes and return apperrors.ErrFileRejected.
	Save(ctx context.Context, r io.Reader, originalName string, maxBytes int64) (StoredObject, error)

	// Open returns the stored bytes. Returns apperrors.ErrNotFound if the reference is unknown.
	Open(ctx context.Context, reference string) (io.ReadCloser, error)

	// Delete removes the object. Deleting an unknown reference is not an error.
	Delete(ctx context.Context, reference string) error
}
