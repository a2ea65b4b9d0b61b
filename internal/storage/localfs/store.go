// Package localfs stores supporting documents on the local filesystem.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
	portsrepo "github.com/SscSPs/lecturer_claims_app/internal/core/ports/repositories"
)

// Store writes each upload to <dir>/<ulid><ext>. References are the bare file names.
type Store struct {
	dir string
}

var _ portsrepo.DocumentStore = (*Store)(nil)

// New creates dir if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("local storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Save(ctx context.Context, r io.Reader, originalName string, maxBytes int64) (portsrepo.StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return portsrepo.StoredObject{}, err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return portsrepo.StoredObject{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, io.LimitReader(r, maxBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return portsrepo.StoredObject{}, fmt.Errorf("failed to write upload: %w", err)
	}
	if n > maxBytes {
		return portsrepo.StoredObject{}, fmt.Errorf("%w: %q exceeds the %d byte limit", apperrors.ErrFileRejected, filepath.Base(originalName), maxBytes)
	}
	if n == 0 {
		return portsrepo.StoredObject{}, fmt.Errorf("%w: %q is empty", apperrors.ErrFileRejected, filepath.Base(originalName))
	}

	mtype, err := mimetype.DetectFile(tmpName)
	if err != nil {
		return portsrepo.StoredObject{}, fmt.Errorf("failed to detect content type: %w", err)
	}

	ref := ulid.Make().String() + strings.ToLower(filepath.Ext(originalName))
	if err := os.Rename(tmpName, filepath.Join(s.dir, ref)); err != nil {
		return portsrepo.StoredObject{}, fmt.Errorf("failed to move upload into place: %w", err)
	}
	committed = true

	return portsrepo.StoredObject{Reference: ref, ContentType: mtype.String(), SizeBytes: n}, nil
}

// path maps a reference to a file inside dir, refusing anything that is not a bare name.
func (s *Store) path(reference string) (string, bool) {
	if reference == "" || filepath.Base(reference) != reference || strings.HasPrefix(reference, ".") {
		return "", false
	}
	return filepath.Join(s.dir, reference), true
}

func (s *Store) Open(_ context.Context, reference string) (io.ReadCloser, error) {
	p, ok := s.path(reference)
	if !ok {
		return nil, fmt.Errorf("%w: document %q", apperrors.ErrNotFound, reference)
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: document %q", apperrors.ErrNotFound, reference)
		}
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return f, nil
}

func (s *Store) Delete(_ context.Context, reference string) error {
	p, ok := s.path(reference)
	if !ok {
		return nil
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete document %q: %w", reference, err)
	}
	return nil
}
