// Package resolver provides queryable class indexes: given a fully
// qualified internal class name, a Resolver returns the decoded class
// metadata or reports that the class is absent.
package resolver

import (
	"errors"
	"fmt"
	"sort"

	"pluginverify/classfile"
)

// ErrNotFound is returned by Resolve when a class is absent from the
// resolver. Any other error indicates the resolver itself failed
// (unreadable archive, corrupt entry).
var ErrNotFound = errors.New("class not found")

// Resolver maps internal class names to class metadata.
// Implementations must be safe for concurrent reads once constructed.
type Resolver interface {
	// Name identifies the resolver in logs and problem descriptions.
	Name() string

	// Resolve returns the class or an error wrapping ErrNotFound.
	Resolve(className string) (*classfile.ClassFile, error)
}

// Enumerable is a Resolver that can list every class it holds.
// The plugin's own resolver must be enumerable: verification walks all of
// the plugin's classes.
type Enumerable interface {
	Resolver

	// Classes returns all class names, sorted.
	Classes() []string
}

// Opener opens a class resolver over a bytecode container on disk.
// Container access (jar/zip/module image) is an external concern; the
// verifier only consumes the resulting Resolver.
type Opener interface {
	Open(path string) (Resolver, error)
}

// MapResolver is an in-memory Enumerable resolver. It backs prebuilt index
// files and test fixtures.
type MapResolver struct {
	name    string
	classes map[string]*classfile.ClassFile
}

// NewMapResolver creates an empty in-memory resolver.
func NewMapResolver(name string) *MapResolver {
	return &MapResolver{
		name:    name,
		classes: make(map[string]*classfile.ClassFile),
	}
}

func (r *MapResolver) Name() string { return r.name }

// Add registers a class, replacing any previous class of the same name.
func (r *MapResolver) Add(cf *classfile.ClassFile) {
	r.classes[cf.Name] = cf
}

func (r *MapResolver) Resolve(className string) (*classfile.ClassFile, error) {
	if cf, ok := r.classes[className]; ok {
		return cf, nil
	}
	return nil, fmt.Errorf("%s: %q: %w", r.name, className, ErrNotFound)
}

func (r *MapResolver) Classes() []string {
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of classes held.
func (r *MapResolver) Len() int { return len(r.classes) }
