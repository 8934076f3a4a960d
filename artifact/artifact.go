// Package artifact identifies plugin artifacts under test and the service
// that turns a reference into a locked local file. Downloading and cache
// eviction live behind the Service interface; the verifier only acquires
// and releases.
package artifact

import "context"

// Reference identifies one plugin artifact, either by a local file path or
// by a repository coordinate resolved by the Service. Immutable once
// created.
type Reference struct {
	ID         string // plugin identifier, when known up front
	Path       string // local file path, if the artifact is already on disk
	Coordinate string // repository coordinate, e.g. "org.example.plugin:1.2.3"
}

func (r Reference) String() string {
	switch {
	case r.ID != "":
		return r.ID
	case r.Path != "":
		return r.Path
	default:
		return r.Coordinate
	}
}

// LockedFile is an acquired artifact pinned on disk for the duration of one
// verification. It must be released exactly once via Service.Release.
type LockedFile interface {
	// Path is the local filesystem path of the pinned artifact.
	Path() string
}

// Service acquires and releases plugin artifacts. Implementations may
// download, cache, and lock files; all of that is invisible here. A file
// acquired for one verification is scoped to that verification and released
// unconditionally when it finishes.
type Service interface {
	Acquire(ctx context.Context, ref Reference) (LockedFile, error)
	Release(f LockedFile) error
}
