package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirService is a Service over plugin files already on disk. References are
// resolved against a root directory unless they carry an absolute path.
// There is nothing to lock locally, so Acquire only verifies existence.
type DirService struct {
	Root string
}

type localFile struct {
	path string
}

func (f *localFile) Path() string { return f.path }

func (s *DirService) Acquire(ctx context.Context, ref Reference) (LockedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := ref.Path
	if path == "" {
		return nil, fmt.Errorf("artifact %s has no local path", ref)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.Root, path)
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid artifact path %q: %w", ref.Path, err)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("artifact %s not found at %s: %w", ref, path, err)
	}

	return &localFile{path: path}, nil
}

func (s *DirService) Release(f LockedFile) error {
	if _, ok := f.(*localFile); !ok {
		return fmt.Errorf("release of foreign locked file %q", f.Path())
	}
	return nil
}
