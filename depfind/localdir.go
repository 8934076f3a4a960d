package depfind

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"pluginverify/artifact"
	"pluginverify/resolver"
)

// archiveExtensions are probed in order when locating a dependency archive
// by plugin id.
var archiveExtensions = []string{".jar", ".zip"}

// LocalDir resolves dependencies from a directory of plugin archives named
// <id>.jar or <id>.zip. The archive is acquired through the artifact
// service and opened with the container opener; the returned Release frees
// both, so the resolved source lives exactly as long as the verification
// that requested it.
type LocalDir struct {
	Dir       string
	Artifacts artifact.Service
	Opener    resolver.Opener
}

func (l *LocalDir) Find(ctx context.Context, dep Dependency) Result {
	if dep.ID == "" {
		return NotFound(fmt.Sprintf("dependency %s has no plugin id", dep))
	}

	for _, ext := range archiveExtensions {
		ref := artifact.Reference{
			ID:   dep.ID,
			Path: filepath.Join(l.Dir, dep.ID+ext),
		}
		locked, err := l.Artifacts.Acquire(ctx, ref)
		if err != nil {
			continue
		}

		src, err := l.Opener.Open(locked.Path())
		if err != nil {
			// Unreadable archive: release the lock and report, rather than
			// falling through to a lower-priority extension.
			_ = l.Artifacts.Release(locked)
			return NotFound(fmt.Sprintf("dependency %s: opening %s: %v", dep, locked.Path(), err))
		}

		release := func() error {
			var firstErr error
			if c, ok := src.(io.Closer); ok {
				firstErr = c.Close()
			}
			if err := l.Artifacts.Release(locked); err != nil && firstErr == nil {
				firstErr = err
			}
			return firstErr
		}
		return Provided(src, release)
	}

	return NotFound(fmt.Sprintf("no archive for dependency %s under %s", dep, l.Dir))
}
